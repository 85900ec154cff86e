package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	req := require.New(t)

	req.Equal(KindValidation, KindOf(Validation("bad input")))
	req.Equal(KindPermission, KindOf(Permission("nope")))
	req.Equal(KindNotFound, KindOf(NotFound("gone")))
	req.Equal(KindAuth, KindOf(Auth("who")))
	req.Equal(KindStorage, KindOf(Storage("s3 down", errors.New("timeout"))))
	req.Equal(KindInternal, KindOf(errors.New("plain")))
	req.Equal(KindInternal, KindOf(nil))
}

func TestIs_MatchesOnKind(t *testing.T) {
	req := require.New(t)

	err := fmt.Errorf("lookup user: %w", NotFound("user not found"))
	req.True(errors.Is(err, NotFound("")))
	req.False(errors.Is(err, Validation("")))
}

func TestMessageOf(t *testing.T) {
	req := require.New(t)

	req.Equal("gone", MessageOf(NotFound("gone")))
	req.Equal("internal server error", MessageOf(errors.New("sql: connection reset")))
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Storage("upload failed", cause)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "storage")
	require.Contains(t, err.Error(), "disk full")
}
