package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	t.Parallel()

	allowed := map[Status][]Status{
		StatusPending:        {StatusDriverAssigned, StatusCancelled},
		StatusDriverAssigned: {StatusPickedUp, StatusCancelled},
		StatusPickedUp:       {StatusInTransit, StatusCancelled},
		StatusInTransit:      {StatusDelivered},
	}

	for _, from := range allowedStatuses {
		for _, to := range allowedStatuses {
			want := false
			for _, s := range allowed[from] {
				if s == to {
					want = true
				}
			}
			require.Equalf(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestStatus_Terminal(t *testing.T) {
	t.Parallel()

	require.True(t, StatusDelivered.Terminal())
	require.True(t, StatusCancelled.Terminal())
	require.False(t, StatusPending.Terminal())
	require.False(t, StatusInTransit.Terminal())

	require.False(t, StatusPending.Active())
	require.True(t, StatusPickedUp.Active())
}

func TestStatus_Valid(t *testing.T) {
	t.Parallel()

	require.True(t, Status("in_transit").Valid())
	require.False(t, Status("lost").Valid())
}

func TestDelivery_StampFor(t *testing.T) {
	t.Parallel()

	var d Delivery
	require.Nil(t, d.StampFor(StatusPending))
	require.Equal(t, &d.AssignedAt, d.StampFor(StatusDriverAssigned))
	require.Equal(t, &d.DeliveredAt, d.StampFor(StatusDelivered))
}

func TestValidatePhone(t *testing.T) {
	t.Parallel()

	require.True(t, ValidatePhone("+79991234567"))
	require.False(t, ValidatePhone("89991234567"))
	require.False(t, ValidatePhone("+7999"))
}
