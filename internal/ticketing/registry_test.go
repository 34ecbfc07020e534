package ticketing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valenruiz/puerta/internal/models"
)

func TestGetEvent(t *testing.T) {
	svc, db := newTestService(t, Policy{}, nil)
	event := createEvent(t, db, 100, true)

	got, err := svc.GetEvent(event.ID)
	require.NoError(t, err)
	assert.Equal(t, event.ID, got.ID)
	assert.Equal(t, "Saturday Night", got.Name)

	_, err = svc.GetEvent(uuid.New())
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestReplaceAssignments_Wholesale(t *testing.T) {
	svc, db := newTestService(t, Policy{}, nil)
	event := createEvent(t, db, 100, true)
	juan := createUser(t, db, "juan", models.RolePromoter)
	maria := createUser(t, db, "maria", models.RolePromoter)
	pedro := createUser(t, db, "pedro", models.RolePromoter)

	err := svc.ReplaceAssignments(event.ID, []AssignmentInput{
		{PromoterID: juan.ID, Rate: decimal.RequireFromString("10.00")},
		{PromoterID: maria.ID, Rate: decimal.RequireFromString("12.50")},
	})
	require.NoError(t, err)

	assignments, err := svc.Assignments(event.ID)
	require.NoError(t, err)
	require.Len(t, assignments, 2)

	// Replacing swaps the whole set, not a diff.
	err = svc.ReplaceAssignments(event.ID, []AssignmentInput{
		{PromoterID: pedro.ID, Rate: decimal.RequireFromString("8.00")},
	})
	require.NoError(t, err)

	assignments, err = svc.Assignments(event.ID)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, pedro.ID, assignments[0].PromoterID)
	assert.True(t, assignments[0].Rate.Equal(decimal.RequireFromString("8.00")))
	require.NotNil(t, assignments[0].Promoter)
	assert.Equal(t, "pedro", assignments[0].Promoter.Name)
}

func TestReplaceAssignments_EmptyClearsAll(t *testing.T) {
	svc, db := newTestService(t, Policy{}, nil)
	event := createEvent(t, db, 100, true)
	juan := createUser(t, db, "juan", models.RolePromoter)
	assign(t, db, event, juan, "10.00")

	require.NoError(t, svc.ReplaceAssignments(event.ID, nil))

	assignments, err := svc.Assignments(event.ID)
	require.NoError(t, err)
	assert.Empty(t, assignments)
}

func TestReplaceAssignments_Errors(t *testing.T) {
	svc, db := newTestService(t, Policy{}, nil)
	event := createEvent(t, db, 100, true)
	juan := createUser(t, db, "juan", models.RolePromoter)

	err := svc.ReplaceAssignments(uuid.New(), nil)
	assert.ErrorIs(t, err, ErrEventNotFound)

	err = svc.ReplaceAssignments(event.ID, []AssignmentInput{
		{PromoterID: juan.ID, Rate: decimal.RequireFromString("-1.00")},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	// The failed replacement must not have wiped anything.
	assign(t, db, event, juan, "10.00")
	err = svc.ReplaceAssignments(event.ID, []AssignmentInput{
		{PromoterID: juan.ID, Rate: decimal.RequireFromString("-5.00")},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assignments, err := svc.Assignments(event.ID)
	require.NoError(t, err)
	assert.Len(t, assignments, 1)
}

func TestDeactivate(t *testing.T) {
	svc, db := newTestService(t, Policy{}, nil)
	event := createEvent(t, db, 100, true)

	require.NoError(t, svc.Deactivate(event.ID))

	got, err := svc.GetEvent(event.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	assert.ErrorIs(t, svc.Deactivate(uuid.New()), ErrEventNotFound)
}
