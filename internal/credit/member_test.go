package credit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMember_Balance(t *testing.T) {
	t.Parallel()

	m := NewMember("A", "Alice", "g1")
	assert.False(t, m.HasBalance())

	_, err := m.Balance()
	require.ErrorIs(t, err, ErrMissingBalance)
	assert.Contains(t, err.Error(), "member A")

	m.SetBalance(0)
	assert.True(t, m.HasBalance())
	got, err := m.Balance()
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)

	m.SetBalance(-1234.5)
	got, err = m.Balance()
	require.NoError(t, err)
	assert.Equal(t, -1234.5, got)
}

func TestMember_SameParty(t *testing.T) {
	t.Parallel()

	a := NewMember("A", "Alice", "g1")
	a.SetBalance(10)
	otherA := NewMember("A", "Someone else", "g2")

	assert.True(t, a.SameParty(otherA))
	assert.False(t, a.SameParty(NewMember("B", "Alice", "g1")))
	assert.False(t, a.SameParty(nil))
}

func TestNewGroup_Defaults(t *testing.T) {
	t.Parallel()

	g := NewGroup("123", "grupo")
	assert.Equal(t, -100.0, g.DebtLimit)
	assert.Equal(t, 100.0, g.CreditLimit)
	assert.Empty(t, g.ParentReference)
}

func TestBalancePolicy(t *testing.T) {
	t.Parallel()

	p, err := ParseBalancePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyAccepted, p)

	p, err = ParseBalancePolicy("all")
	require.NoError(t, err)
	assert.Equal(t, PolicyAll, p)

	_, err = ParseBalancePolicy("settled")
	assert.Error(t, err)

	assert.True(t, PolicyAccepted.Counts(StatusAccepted))
	assert.False(t, PolicyAccepted.Counts(StatusRequested))
	assert.True(t, PolicyAll.Counts(StatusRequested))
}

func TestParseStatus(t *testing.T) {
	t.Parallel()

	s, err := ParseStatus("accepted")
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, s)

	_, err = ParseStatus("cancelled")
	assert.Error(t, err)
}
