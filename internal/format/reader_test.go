package format_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemalens/schemalens/internal/domain"
	"github.com/schemalens/schemalens/internal/format"
)

func TestDecodeJSONPreservesMemberOrder(t *testing.T) {
	v, err := format.DecodeJSON([]byte(`{"zeta":1,"alpha":2,"mid":{"b":1,"a":2}}`))
	require.NoError(t, err)
	require.Equal(t, domain.KindObject, v.Kind)

	keys := make([]string, 0, len(v.Obj))
	for _, m := range v.Obj {
		keys = append(keys, m.Key)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, keys)

	nested := v.Obj[2].Val
	require.Equal(t, domain.KindObject, nested.Kind)
	assert.Equal(t, "b", nested.Obj[0].Key)
	assert.Equal(t, "a", nested.Obj[1].Key)
}

func TestDecodeJSONScalars(t *testing.T) {
	v, err := format.DecodeJSON([]byte(`{"n":1.5,"b":true,"s":"x","z":null,"arr":[1,2]}`))
	require.NoError(t, err)

	n, _ := v.Lookup("n")
	assert.Equal(t, domain.KindNumber, n.Kind)
	assert.Equal(t, 1.5, n.Num)

	b, _ := v.Lookup("b")
	assert.Equal(t, domain.KindBool, b.Kind)
	assert.True(t, b.Bool)

	z, _ := v.Lookup("z")
	assert.True(t, z.IsNull())

	arr, _ := v.Lookup("arr")
	assert.Equal(t, domain.KindArray, arr.Kind)
	assert.Len(t, arr.Arr, 2)
}

func TestDecodeJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "truncated", in: `{"a":`},
		{name: "trailing content", in: `{"a":1} extra`},
		{name: "empty input", in: ``},
		{name: "bare garbage", in: `{{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := format.DecodeJSON([]byte(tt.in))
			require.Error(t, err)
			var fe *format.FormatError
			assert.ErrorAs(t, err, &fe)
		})
	}
}

func TestDecodeYAML(t *testing.T) {
	src := `
name: users
count: 3
active: true
ratio: 0.5
missing: null
tags:
  - a
  - b
`
	v, err := format.DecodeYAML([]byte(src))
	require.NoError(t, err)
	require.Equal(t, domain.KindObject, v.Kind)

	assert.Equal(t, "name", v.Obj[0].Key)
	assert.Equal(t, "count", v.Obj[1].Key)

	count, _ := v.Lookup("count")
	assert.Equal(t, domain.KindNumber, count.Kind)
	assert.Equal(t, float64(3), count.Num)

	active, _ := v.Lookup("active")
	assert.Equal(t, domain.KindBool, active.Kind)

	missing, _ := v.Lookup("missing")
	assert.True(t, missing.IsNull())

	tags, _ := v.Lookup("tags")
	require.Equal(t, domain.KindArray, tags.Kind)
	assert.Equal(t, "a", tags.Arr[0].Str)
}

func TestDecodeYAMLMalformed(t *testing.T) {
	_, err := format.DecodeYAML([]byte("a: [unclosed"))
	require.Error(t, err)
	var fe *format.FormatError
	assert.ErrorAs(t, err, &fe)
	assert.Contains(t, fe.Details, "invalid YAML")
}

func TestDecodeUnknownHintFallsBackToYAML(t *testing.T) {
	v, err := format.Decode([]byte("key: value"), format.HintUnknown)
	require.NoError(t, err)
	got, ok := v.Lookup("key")
	require.True(t, ok)
	assert.Equal(t, "value", got.Str)
}

func TestDecodeRejectsXMLHint(t *testing.T) {
	// YAML would otherwise accept "<a/>" as a scalar string.
	_, err := format.Decode([]byte("<a/>"), format.HintXML)
	require.Error(t, err)
	var fe *format.FormatError
	assert.ErrorAs(t, err, &fe)
	assert.Contains(t, fe.Details, "ParseXML")
}

func TestValueInterface(t *testing.T) {
	v, err := format.DecodeJSON([]byte(`{"a":[1,true,null],"b":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"a": []interface{}{float64(1), true, nil},
		"b": "x",
	}, v.Interface())
}

func TestParseXML(t *testing.T) {
	src := `<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <GetUsersResponse>
      <User id="1"><name>Ada</name></User>
      <User id="2"><name>Grace</name></User>
    </GetUsersResponse>
  </soap:Body>
</soap:Envelope>`

	root, err := format.ParseXML([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, "Envelope", root.Name)

	body := root.Find("Body")
	require.NotNil(t, body)

	resp := body.Find("GetUsersResponse")
	require.NotNil(t, resp)
	require.Len(t, resp.Children, 2)
	assert.Equal(t, "1", resp.Children[0].Attr("id"))
	assert.Equal(t, "Ada", resp.Children[0].Find("name").Text)
}

func TestParseXMLErrors(t *testing.T) {
	for _, in := range []string{"", "<a><b></a>", "not xml at all"} {
		_, err := format.ParseXML([]byte(in))
		assert.Error(t, err, "input %q", in)
	}
}
