package codec

import (
	"encoding/hex"
	"sync"
	"testing"

	"github.com/pion/transport/v3/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backkem/matterschema/pkg/datamodel"
	"github.com/backkem/matterschema/pkg/schema"
	"github.com/backkem/matterschema/pkg/tlv"
	"github.com/backkem/matterschema/pkg/types"
)

func clusterT(t *testing.T, id datamodel.ClusterID) *schema.ClusterSchema {
	t.Helper()
	reg, err := schema.Default()
	require.NoError(t, err)
	c, err := reg.Cluster(id)
	require.NoError(t, err)
	return c
}

func TestBuild_InstantAction(t *testing.T) {
	c := clusterT(t, datamodel.ClusterActions)

	cmd, err := Build(c, "instantAction", map[string]any{"actionId": 0x1234})
	require.NoError(t, err)
	assert.Equal(t, []string{"actionId"}, cmd.Keys())
	assert.Equal(t, datamodel.CommandID(0), cmd.ID)
	assert.Equal(t, "Actions", cmd.ClusterName)

	v, ok := cmd.Get("actionId")
	require.True(t, ok)
	assert.Equal(t, uint64(0x1234), v)
	assert.False(t, cmd.Has("invokeId"))

	invoke := uint32(7)
	cmd, err = Build(c, "instantAction", map[string]any{"invokeId": &invoke, "actionId": uint16(0x1234)})
	require.NoError(t, err)
	assert.Equal(t, []string{"actionId", "invokeId"}, cmd.Keys())

	data, err := EncodeTLV(cmd)
	require.NoError(t, err)
	assert.Equal(t, "152500341224010718", hex.EncodeToString(data))
}

func TestBuild_GoToLiftPercentage(t *testing.T) {
	c := clusterT(t, datamodel.ClusterWindowCovering)

	cmd, err := Build(c, "goToLiftPercentage", map[string]any{"liftPercent100thsValue": 5000})
	require.NoError(t, err)
	assert.Equal(t, 1, cmd.Len())

	js, err := cmd.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"liftPercent100thsValue":5000}`, string(js))
}

func TestBuild_SetpointRaiseLower(t *testing.T) {
	c := clusterT(t, datamodel.ClusterThermostat)

	cmd, err := Build(c, "setpointRaiseLower", map[string]any{"mode": "both", "amount": -5})
	require.NoError(t, err)
	data, err := EncodeTLV(cmd)
	require.NoError(t, err)
	assert.Equal(t, "152400022001fb18", hex.EncodeToString(data))

	desc, err := c.CommandByName("setpointRaiseLower")
	require.NoError(t, err)
	back, err := DecodeCommand(c, desc, data)
	require.NoError(t, err)
	amount, ok := back.Get("amount")
	require.True(t, ok)
	assert.Equal(t, int64(-5), amount)

	_, err = Build(c, "setpointRaiseLower", map[string]any{"mode": 0, "amount": -129})
	assert.ErrorIs(t, err, datamodel.ErrTypeMismatch)
}

// Every subset of the setUser parameters, the rest left nil, must come back
// as exactly that subset in declaration order.
func TestBuild_SubsetNull(t *testing.T) {
	c := clusterT(t, datamodel.ClusterDoorLock)
	desc, err := c.CommandByName("setUser")
	require.NoError(t, err)

	values := map[string]any{
		"operationType":  "add",
		"userIndex":      1,
		"userName":       "alice",
		"userUniqueId":   uint32(5),
		"userStatus":     1,
		"userType":       types.EnumValue{Raw: 0},
		"credentialRule": "dual",
	}
	require.Len(t, desc.Params, len(values))

	for mask := 0; mask < 1<<len(desc.Params); mask++ {
		var args []Arg
		var want []string
		for i, p := range desc.Params {
			if mask&(1<<i) != 0 {
				args = append(args, NewArg(p.Name, values[p.Name]))
				want = append(want, p.Name)
			} else {
				args = append(args, NewArg(p.Name, nil))
			}
		}
		cmd, err := BuildCommand(c, desc, args...)
		require.NoError(t, err, "mask %07b", mask)
		if want == nil {
			want = []string{}
		}
		assert.Equal(t, want, cmd.Keys(), "mask %07b", mask)
	}
}

func TestBuild_ArgumentOrderIrrelevant(t *testing.T) {
	c := clusterT(t, datamodel.ClusterOnOff)
	desc, err := c.CommandByName("onWithTimedOff")
	require.NoError(t, err)

	a, err := BuildCommand(c, desc,
		NewArg("offWaitTime", 20), NewArg("onOffControl", []string{"acceptOnlyWhenOn"}), NewArg("onTime", 10))
	require.NoError(t, err)
	b, err := BuildCommand(c, desc,
		NewArg("onTime", 10), NewArg("offWaitTime", 20), NewArg("onOffControl", 1))
	require.NoError(t, err)

	assert.Equal(t, []string{"onOffControl", "onTime", "offWaitTime"}, a.Keys())
	assert.Equal(t, a, b)
}

func TestBuild_Tristate(t *testing.T) {
	c := clusterT(t, datamodel.ClusterDoorLock)

	cmd, err := Build(c, "setCredential", map[string]any{
		"operationType":  types.Some("add"),
		"credential":     map[string]any{"credentialType": "pin", "credentialIndex": 1},
		"credentialData": []byte("1234"),
		"userIndex":      types.Null[uint16](),
		"userStatus":     types.Absent[uint8](),
		"userType":       (*uint8)(nil),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"operationType", "credential", "credentialData", "userIndex"}, cmd.Keys())

	v, _ := cmd.Get("userIndex")
	assert.True(t, types.IsNull(v))

	cred, _ := cmd.Get("credential")
	s, ok := cred.(types.Struct)
	require.True(t, ok)
	ct, _ := s.Get("credentialType")
	assert.Equal(t, types.EnumValue{Raw: 1, Name: "pin", Label: "PIN", Known: true}, ct)

	js, err := cmd.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t,
		`{"operationType":0,"credential":{"credentialType":1,"credentialIndex":1},"credentialData":"31323334","userIndex":null}`,
		string(js))
}

func TestBuild_FieldPointers(t *testing.T) {
	c := clusterT(t, datamodel.ClusterActions)
	desc, err := c.CommandByName("instantAction")
	require.NoError(t, err)

	cmd, err := BuildCommand(c, desc,
		NewArg("actionId", 5),
		NewArg("invokeId", (*types.Field[uint32])(nil)))
	require.NoError(t, err)
	assert.Equal(t, []string{"actionId"}, cmd.Keys())

	invoke := types.Some[uint32](3)
	cmd, err = BuildCommand(c, desc, NewArg("actionId", 5), NewArg("invokeId", &invoke))
	require.NoError(t, err)
	v, ok := cmd.Get("invokeId")
	require.True(t, ok)
	assert.Equal(t, uint64(3), v)

	_, ok = Presence((*types.Field[string])(nil))
	assert.False(t, ok)
}

func TestBuild_Errors(t *testing.T) {
	c := clusterT(t, datamodel.ClusterDoorLock)

	tests := []struct {
		name string
		cmd  string
		args map[string]any
		err  error
	}{
		{"unknown command", "explode", nil, datamodel.ErrCommandNotFound},
		{"unknown param", "getUser", map[string]any{"userId": 1}, datamodel.ErrTypeMismatch},
		{"null not nullable", "getUser", map[string]any{"userIndex": types.NullValue}, datamodel.ErrTypeMismatch},
		{"out of range", "getUser", map[string]any{"userIndex": 70000}, datamodel.ErrTypeMismatch},
		{"negative unsigned", "getUser", map[string]any{"userIndex": -1}, datamodel.ErrTypeMismatch},
		{"wrong kind", "getUser", map[string]any{"userIndex": "1"}, datamodel.ErrTypeMismatch},
		{"null sentinel", "setCredential", map[string]any{"userIndex": 0xFFFF}, datamodel.ErrTypeMismatch},
		{"octstr as string", "lockDoor", map[string]any{"pinCode": "1234"}, datamodel.ErrTypeMismatch},
		{"unknown enum name", "setUser", map[string]any{"operationType": "explode"}, datamodel.ErrTypeMismatch},
		{"unknown struct field", "clearCredential", map[string]any{
			"credential": map[string]any{"credentialKind": 1},
		}, datamodel.ErrTypeMismatch},
		{"slice for string", "setUser", map[string]any{"userName": []string{"a"}}, datamodel.ErrTypeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(c, tt.cmd, tt.args)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestBuildCommand_Duplicate(t *testing.T) {
	c := clusterT(t, datamodel.ClusterDoorLock)
	desc, err := c.CommandByName("getUser")
	require.NoError(t, err)

	_, err = BuildCommand(c, desc, NewArg("userIndex", 1), NewArg("userIndex", 2))
	assert.ErrorIs(t, err, datamodel.ErrTypeMismatch)
}

func TestCheck_Bitmap(t *testing.T) {
	c := clusterT(t, datamodel.ClusterDoorLock)
	ref := types.Bitmap("DoorLock.OperatingModesBitmap")

	v, err := Check(c.Registry(), ref, false, "modes", 0xFFFF)
	require.NoError(t, err)
	bm := v.(types.BitmapValue)
	assert.Equal(t, uint64(0xFFFF), bm.Raw)
	assert.Equal(t, uint64(0x7FF), bm.Get("alwaysSet"))

	v, err = Check(c.Registry(), types.Bitmap("DoorLock.DaysMaskBitmap"), false, "days", 0xFF)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x7F), v.(types.BitmapValue).Raw)

	_, err = Check(c.Registry(), ref, false, "modes", []string{"weekend"})
	assert.ErrorIs(t, err, datamodel.ErrTypeMismatch)
}

func TestCheck_List(t *testing.T) {
	ref := types.List(types.Primitive(types.KindUint8))

	v, err := Check(nil, ref, false, "l", []int{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []any{uint64(1), uint64(2), uint64(3)}, v)

	_, err = Check(nil, ref, false, "l", []byte{1})
	assert.ErrorIs(t, err, datamodel.ErrTypeMismatch)
	_, err = Check(nil, ref, false, "l", []int{256})
	assert.ErrorIs(t, err, datamodel.ErrTypeMismatch)
}

func TestCheck_NoRegistry(t *testing.T) {
	_, err := Check(nil, types.Enum("OnOff.StartUpOnOffEnum"), false, "x", 1)
	assert.ErrorIs(t, err, datamodel.ErrTypeNotFound)
}

func TestDecodeCommand_RoundTrip(t *testing.T) {
	c := clusterT(t, datamodel.ClusterDoorLock)
	desc, err := c.CommandByName("getUserResponse")
	require.NoError(t, err)

	in, err := BuildCommand(c, desc,
		NewArg("userIndex", 3),
		NewArg("userName", "bob"),
		NewArg("userStatus", types.NullValue),
		NewArg("credentials", []any{
			map[string]any{"credentialType": "pin", "credentialIndex": 1},
			types.Struct{Members: []types.Member{{Name: "credentialIndex", Value: 2}, {Name: "credentialType", Value: 2}}},
		}),
	)
	require.NoError(t, err)

	data, err := EncodeTLV(in)
	require.NoError(t, err)

	out, err := DecodeCommand(c, desc, data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeValue_Tolerant(t *testing.T) {
	c := clusterT(t, datamodel.ClusterDoorLock)
	reg := c.Registry()

	// Enum value 0x42 is not declared.
	v, err := DecodeTLV(reg, types.Enum("DoorLock.LockStateEnum"), []byte{0x04, 0x42})
	require.NoError(t, err)
	assert.Equal(t, types.EnumValue{Raw: 0x42, Name: "unknown"}, v)

	// Bit 7 is not declared in DaysMaskBitmap.
	v, err = DecodeTLV(reg, types.Bitmap("DoorLock.DaysMaskBitmap"), []byte{0x04, 0x83})
	require.NoError(t, err)
	assert.Equal(t, uint64(0x03), v.(types.BitmapValue).Raw)

	// Struct member 9 is unknown and skipped, even as a container.
	w := tlv.NewWriter()
	require.NoError(t, w.StartStructure(tlv.Anonymous()))
	require.NoError(t, w.StartArray(tlv.ContextTag(9)))
	require.NoError(t, w.PutUint(tlv.Anonymous(), 1))
	require.NoError(t, w.EndContainer())
	require.NoError(t, w.PutUint(tlv.ContextTag(1), 4))
	require.NoError(t, w.PutUint(tlv.ContextTag(0), 2))
	require.NoError(t, w.EndContainer())
	data, err := w.Bytes()
	require.NoError(t, err)

	v, err = DecodeTLV(reg, types.StructRef("DoorLock.CredentialStruct"), data)
	require.NoError(t, err)
	s := v.(types.Struct)
	require.Equal(t, 2, s.Len())
	assert.Equal(t, "credentialType", s.Members[0].Name)
	idx, _ := s.ByID(1)
	assert.Equal(t, uint64(4), idx)

	// Lists are accepted as TLV lists as well as arrays.
	w = tlv.NewWriter()
	require.NoError(t, w.StartList(tlv.Anonymous()))
	require.NoError(t, w.PutNull(tlv.Anonymous()))
	require.NoError(t, w.EndContainer())
	data, err = w.Bytes()
	require.NoError(t, err)
	v, err = DecodeTLV(reg, types.List(types.Primitive(types.KindUint16)), data)
	require.NoError(t, err)
	assert.Equal(t, []any{types.NullValue}, v)
}

func TestDecodeValue_Mismatch(t *testing.T) {
	_, err := DecodeTLV(nil, types.Primitive(types.KindString), []byte{0x04, 0x01})
	assert.ErrorIs(t, err, datamodel.ErrTypeMismatch)

	_, err = DecodeTLV(nil, types.Primitive(types.KindUint8), nil)
	assert.ErrorIs(t, err, tlv.ErrUnexpectedEOF)
}

func TestEncodeTLV_FieldIDRange(t *testing.T) {
	cmd := &EncodedCommand{Name: "x", Args: []Arg{{Name: "big", FieldID: 300, Value: uint64(1)}}}
	_, err := EncodeTLV(cmd)
	assert.ErrorIs(t, err, ErrFieldIDRange)
}

func TestArgsFromJSON(t *testing.T) {
	c := clusterT(t, datamodel.ClusterDoorLock)
	desc, err := c.CommandByName("setCredential")
	require.NoError(t, err)

	args, err := ArgsFromJSON(c, desc, []byte(`{
		"operationType": "modify",
		"credential": {"credentialType": 1, "credentialIndex": "0x10"},
		"credentialData": "31323334",
		"userIndex": null,
		"userType": "5"
	}`))
	require.NoError(t, err)

	cmd, err := BuildCommand(c, desc, argList(args)...)
	require.NoError(t, err)
	js, err := cmd.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t,
		`{"operationType":2,"credential":{"credentialType":1,"credentialIndex":16},"credentialData":"31323334","userIndex":null,"userType":5}`,
		string(js))
}

func TestArgsFromJSON_Bitmap(t *testing.T) {
	c := clusterT(t, datamodel.ClusterOnOff)
	desc, err := c.CommandByName("onWithTimedOff")
	require.NoError(t, err)

	for _, in := range []string{
		`{"onOffControl": 1}`,
		`{"onOffControl": ["acceptOnlyWhenOn"]}`,
		`{"onOffControl": {"acceptOnlyWhenOn": true}}`,
	} {
		args, err := ArgsFromJSON(c, desc, []byte(in))
		require.NoError(t, err, in)
		cmd, err := BuildCommand(c, desc, argList(args)...)
		require.NoError(t, err, in)
		v, _ := cmd.Get("onOffControl")
		assert.Equal(t, uint64(1), v.(types.BitmapValue).Raw, in)
	}
}

func TestArgsFromJSON_Errors(t *testing.T) {
	c := clusterT(t, datamodel.ClusterDoorLock)
	desc, err := c.CommandByName("setCredential")
	require.NoError(t, err)

	for _, in := range []string{
		`[1, 2]`,
		`{"operationType": `,
		`{"nope": 1}`,
		`{"credentialData": "zz"}`,
		`{"userIndex": true}`,
		`{"credential": {"credentialKind": 1}}`,
	} {
		_, err := ArgsFromJSON(c, desc, []byte(in))
		assert.ErrorIs(t, err, datamodel.ErrTypeMismatch, in)
	}

	args, err := ArgsFromJSON(c, desc, nil)
	require.NoError(t, err)
	assert.Empty(t, args)
}

func TestBuild_Concurrent(t *testing.T) {
	defer test.CheckRoutines(t)()

	c := clusterT(t, datamodel.ClusterWindowCovering)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cmd, err := Build(c, "goToLiftPercentage", map[string]any{"liftPercent100thsValue": i * 100})
			assert.NoError(t, err)
			_, err = EncodeTLV(cmd)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
}

func argList(m map[string]any) []Arg {
	out := make([]Arg, 0, len(m))
	for k, v := range m {
		out = append(out, NewArg(k, v))
	}
	return out
}
