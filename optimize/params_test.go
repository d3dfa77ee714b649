package optimize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamsJSONKeepsOrder(t *testing.T) {
	p := Params{{"zeta", 1}, {"alpha", 2.5}, {"kernel", "rbf"}, {"warm", true}}

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":1,"alpha":2.5,"kernel":"rbf","warm":true}`, string(data))

	back, err := ParseParams(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "kernel", "warm"}, back.Names())
	assert.Equal(t, []any{int64(1), 2.5, "rbf", true}, back.Values())
}

func TestParseParamsRejectsNesting(t *testing.T) {
	_, err := ParseParams([]byte(`{"a": [1, 2]}`))
	assert.Error(t, err)

	_, err = ParseParams([]byte(`[1, 2]`))
	assert.Error(t, err)
}

func TestParamsAccessors(t *testing.T) {
	p := Params{{"lr", 0.1}, {"depth", int64(6)}, {"kernel", "rbf"}, {"frac", 2.5}}

	lr, err := p.Float("lr")
	require.NoError(t, err)
	assert.Equal(t, 0.1, lr)

	depth, err := p.Int("depth")
	require.NoError(t, err)
	assert.Equal(t, 6, depth)

	kernel, err := p.Text("kernel")
	require.NoError(t, err)
	assert.Equal(t, "rbf", kernel)

	_, err = p.Int("frac")
	assert.Error(t, err)
	_, err = p.Float("kernel")
	assert.Error(t, err)
	_, err = p.Float("missing")
	assert.Error(t, err)
	_, err = p.Text("lr")
	assert.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	a := Params{{"x", 1.0}, {"k", "rbf"}}
	b := Params{{"x", 1.0}, {"k", "rbf"}}
	c := Params{{"k", "rbf"}, {"x", 1.0}}
	d := Params{{"x", 1}, {"k", "rbf"}}

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), d.Fingerprint())
}
