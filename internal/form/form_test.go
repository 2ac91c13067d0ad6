package form

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expenses/internal/core"
	"expenses/internal/slot/memory"
	"expenses/internal/store"
)

var fixedNow = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

func newController(t *testing.T) (*Controller, *store.Store, *memory.Slot) {
	t.Helper()
	sl := memory.New()
	st, err := store.Open(context.Background(), sl)
	require.NoError(t, err)
	return NewController(st, WithClock(func() time.Time { return fixedNow })), st, sl
}

func TestDefaults(t *testing.T) {
	c, _, _ := newController(t)
	state := c.State()
	assert.False(t, state.Editing())
	assert.Equal(t, Input{Date: "2024-03-15", Category: "Food"}, state.Input)
}

func TestSubmitCreatesOneRecord(t *testing.T) {
	inputs := []Input{
		{Title: "Coffee", Amount: "3.5", Date: "2024-03-01", Category: "Food"},
		{Title: "  Bus  ", Amount: "2,00", Date: "2024-03-02", Category: "Transport", Notes: " late "},
		{Title: "Gift", Amount: "0", Date: "2023-12-24", Category: "Presents"},
		{Title: "Rent", Amount: "1200", Date: "2024-01-01"},
	}

	for _, in := range inputs {
		t.Run(in.Title, func(t *testing.T) {
			ctx := context.Background()
			c, st, sl := newController(t)

			res, err := c.Submit(ctx, in)
			require.NoError(t, err)
			assert.True(t, res.Created)

			reloaded, err := store.Open(ctx, sl)
			require.NoError(t, err)
			all := reloaded.All()
			require.Len(t, all, 1)
			assert.Equal(t, res.Expense.ID, all[0].ID)
			assert.NotEmpty(t, all[0].ID)
			assert.Equal(t, st.All()[0].Title, all[0].Title)

			wantAmount, _ := core.ParseAmount(in.Amount)
			assert.True(t, wantAmount.Value.Equal(all[0].Amount.Value))
			assert.Equal(t, in.Date, all[0].Date.String())

			assert.Equal(t, Input{Date: "2024-03-15", Category: "Food"}, c.State().Input)
		})
	}
}

func TestSubmitNormalizesFields(t *testing.T) {
	c, _, _ := newController(t)
	res, err := c.Submit(context.Background(), Input{Title: "  Bus  ", Amount: "2", Date: "2024-03-02", Notes: " late "})
	require.NoError(t, err)
	assert.Equal(t, "Bus", res.Expense.Title)
	assert.Equal(t, "late", res.Expense.Notes)
	assert.Equal(t, "Food", res.Expense.Category)
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name   string
		in     Input
		fields []string
		is     error
	}{
		{name: "blank title", in: Input{Title: "   ", Amount: "1", Date: "2024-03-01"}, fields: []string{"title"}, is: core.ErrEmptyTitle},
		{name: "non numeric amount", in: Input{Title: "x", Amount: "abc", Date: "2024-03-01"}, fields: []string{"amount"}, is: core.ErrInvalidAmount},
		{name: "negative amount", in: Input{Title: "x", Amount: "-1", Date: "2024-03-01"}, fields: []string{"amount"}, is: core.ErrNegativeAmount},
		{name: "missing date", in: Input{Title: "x", Amount: "1"}, fields: []string{"date"}, is: core.ErrEmptyDate},
		{name: "bad date", in: Input{Title: "x", Amount: "1", Date: "03/01/2024"}, fields: []string{"date"}, is: core.ErrInvalidDate},
		{name: "everything", in: Input{}, fields: []string{"title", "amount", "date"}, is: core.ErrEmptyTitle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, st, _ := newController(t)

			_, err := c.Submit(context.Background(), tt.in)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.fields, verr.Fields)
			assert.ErrorIs(t, err, tt.is)

			assert.Zero(t, st.Len())
			assert.Equal(t, tt.in, c.State().Input)
		})
	}
}

func TestEditKeepsIDAndOtherRecords(t *testing.T) {
	ctx := context.Background()
	c, st, sl := newController(t)

	coffee, err := c.Submit(ctx, Input{Title: "Coffee", Amount: "3.5", Date: "2024-03-01", Category: "Food"})
	require.NoError(t, err)
	bus, err := c.Submit(ctx, Input{Title: "Bus", Amount: "2", Date: "2024-03-02", Category: "Transport"})
	require.NoError(t, err)

	require.True(t, c.BeginEdit(coffee.Expense.ID))
	state := c.State()
	assert.True(t, state.Editing())
	assert.Equal(t, Input{Title: "Coffee", Amount: "3.5", Date: "2024-03-01", Category: "Food"}, state.Input)

	res, err := c.Submit(ctx, Input{Title: "Espresso", Amount: "4", Date: "2024-03-01", Category: "Food", Notes: "double"})
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.False(t, c.State().Editing())

	reloaded, err := store.Open(ctx, sl)
	require.NoError(t, err)
	all := reloaded.All()
	require.Len(t, all, 2)
	assert.Equal(t, coffee.Expense.ID, all[0].ID)
	assert.Equal(t, "Espresso", all[0].Title)
	assert.Equal(t, "double", all[0].Notes)
	assert.Equal(t, bus.Expense, all[1])
	assert.Equal(t, st.All(), all)
}

func TestBeginEditUnknownIsNoop(t *testing.T) {
	c, _, _ := newController(t)
	assert.False(t, c.BeginEdit("missing"))
	assert.False(t, c.State().Editing())
}

func TestCancelResetsWithoutTouchingStore(t *testing.T) {
	ctx := context.Background()
	c, st, _ := newController(t)
	res, err := c.Submit(ctx, Input{Title: "Coffee", Amount: "3.5", Date: "2024-03-01"})
	require.NoError(t, err)
	version := st.Version()

	require.True(t, c.BeginEdit(res.Expense.ID))
	c.Cancel()

	assert.False(t, c.State().Editing())
	assert.Equal(t, Input{Date: "2024-03-15", Category: "Food"}, c.State().Input)
	assert.Equal(t, version, st.Version())
}

func TestSubmitAfterEditedRecordRemoved(t *testing.T) {
	ctx := context.Background()
	c, st, _ := newController(t)
	res, err := c.Submit(ctx, Input{Title: "Coffee", Amount: "3.5", Date: "2024-03-01"})
	require.NoError(t, err)

	require.True(t, c.BeginEdit(res.Expense.ID))
	_, err = st.Remove(ctx, res.Expense.ID)
	require.NoError(t, err)

	out, err := c.Submit(ctx, Input{Title: "Tea", Amount: "1", Date: "2024-03-01"})
	require.NoError(t, err)
	assert.True(t, out.Missing)
	assert.Zero(t, st.Len())
	assert.False(t, c.State().Editing())
}

func TestForget(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newController(t)
	res, err := c.Submit(ctx, Input{Title: "Coffee", Amount: "3.5", Date: "2024-03-01"})
	require.NoError(t, err)
	require.True(t, c.BeginEdit(res.Expense.ID))

	assert.False(t, c.Forget("other"))
	assert.True(t, c.State().Editing())
	assert.True(t, c.Forget(res.Expense.ID))
	assert.False(t, c.State().Editing())
	assert.False(t, c.Forget(res.Expense.ID))
}
