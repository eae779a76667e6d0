package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/livetest-app/livetest/internal/dto"
	"github.com/livetest-app/livetest/pkg/grader"
)

type fakeAuth struct {
	calls  int
	result grader.LoginResult
	err    error
}

func (f *fakeAuth) Login(_ context.Context, _, _ string) (grader.LoginResult, error) {
	f.calls++
	if f.err != nil {
		return grader.LoginResult{}, f.err
	}
	return f.result, nil
}

func validLogin(email string) dto.LoginRequest {
	return dto.LoginRequest{Email: email, Password: "correct horse battery"}
}

func TestAuthLoginPassesThroughIdentity(t *testing.T) {
	fake := &fakeAuth{result: grader.LoginResult{
		AccessToken: "jwt-token",
		Role:        "teacher",
		UserID:      12,
		Email:       "teacher@example.edu",
		Name:        "Pat Teacher",
	}}
	svc := NewAuthService(fake, testValidator(), 5, 30*time.Second, testLogger())

	resp, err := svc.Login(context.Background(), validLogin("teacher@example.edu"))
	require.NoError(t, err)
	require.Equal(t, "jwt-token", resp.AccessToken)
	require.Equal(t, "teacher", resp.Role)
	require.Equal(t, 12, resp.UserID)
	require.Equal(t, "Pat Teacher", resp.Name)
}

func TestAuthLoginRejectsInvalidPayloadLocally(t *testing.T) {
	fake := &fakeAuth{}
	svc := NewAuthService(fake, testValidator(), 5, 30*time.Second, testLogger())

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "not-an-email", Password: "short"})
	require.Error(t, err)
	require.Zero(t, fake.calls)
}

func TestAuthLoginLocksAfterMaxFailures(t *testing.T) {
	fake := &fakeAuth{err: &grader.APIError{StatusCode: 401, Detail: "invalid credentials"}}
	svc := NewAuthService(fake, testValidator(), 5, 30*time.Second, testLogger())

	for i := 0; i < 5; i++ {
		_, err := svc.Login(context.Background(), validLogin("student@example.edu"))
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrLockedOut)
	}
	require.Equal(t, 5, fake.calls)

	// The sixth attempt never reaches the grading service.
	_, err := svc.Login(context.Background(), validLogin("student@example.edu"))
	require.ErrorIs(t, err, ErrLockedOut)
	require.Equal(t, 5, fake.calls)
}

func TestAuthLockoutExpires(t *testing.T) {
	fake := &fakeAuth{err: &grader.APIError{StatusCode: 401, Detail: "invalid credentials"}}
	svc := NewAuthService(fake, testValidator(), 2, 30*time.Second, testLogger()).(*authService)

	now := time.Now()
	svc.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		_, _ = svc.Login(context.Background(), validLogin("student@example.edu"))
	}
	_, err := svc.Login(context.Background(), validLogin("student@example.edu"))
	require.ErrorIs(t, err, ErrLockedOut)

	now = now.Add(31 * time.Second)
	fake.err = nil
	fake.result = grader.LoginResult{AccessToken: "tok"}

	resp, err := svc.Login(context.Background(), validLogin("student@example.edu"))
	require.NoError(t, err)
	require.Equal(t, "tok", resp.AccessToken)
}

func TestAuthSuccessClearsFailureCount(t *testing.T) {
	fake := &fakeAuth{err: &grader.APIError{StatusCode: 401, Detail: "invalid credentials"}}
	svc := NewAuthService(fake, testValidator(), 3, 30*time.Second, testLogger())

	for i := 0; i < 2; i++ {
		_, _ = svc.Login(context.Background(), validLogin("student@example.edu"))
	}

	fake.err = nil
	fake.result = grader.LoginResult{AccessToken: "tok"}
	_, err := svc.Login(context.Background(), validLogin("student@example.edu"))
	require.NoError(t, err)

	// Counter restarted: two more failures stay under the limit.
	fake.err = &grader.APIError{StatusCode: 401, Detail: "invalid credentials"}
	for i := 0; i < 2; i++ {
		_, err = svc.Login(context.Background(), validLogin("student@example.edu"))
		require.NotErrorIs(t, err, ErrLockedOut)
	}
}

func TestAuthSanitizesUpstreamDetail(t *testing.T) {
	fake := &fakeAuth{err: &grader.APIError{
		StatusCode: 401,
		Detail:     `invalid credentials <img src=x onerror=alert(1)>`,
	}}
	svc := NewAuthService(fake, testValidator(), 5, 30*time.Second, testLogger())

	_, err := svc.Login(context.Background(), validLogin("student@example.edu"))

	var apiErr *grader.APIError
	require.ErrorAs(t, err, &apiErr)
	require.NotContains(t, apiErr.Detail, "<img")
	require.Contains(t, apiErr.Detail, "invalid credentials")
}

func TestAuthNetworkFailureDoesNotCountTowardLockout(t *testing.T) {
	fake := &fakeAuth{err: grader.ErrUnreachable}
	svc := NewAuthService(fake, testValidator(), 2, 30*time.Second, testLogger())

	for i := 0; i < 4; i++ {
		_, err := svc.Login(context.Background(), validLogin("student@example.edu"))
		require.ErrorIs(t, err, grader.ErrUnreachable)
	}
	require.Equal(t, 4, fake.calls)
}
