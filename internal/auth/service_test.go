package auth

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"annadan/internal/models"
)

// fakeSender пишет коды в память; fail=true имитирует лежащий SMTP.
type fakeSender struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (f *fakeSender) SendOTP(_, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("smtp down")
	}
	f.sent = append(f.sent, code)
	return nil
}

func (f *fakeSender) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}

type testEnv struct {
	svc      *Service
	users    Users
	otps     OTPs
	sessions *SessionRegistry
	sender   *fakeSender
	purged   *[]uint
}

func newTestEnv(adminEmails ...string) *testEnv {
	var purged []uint
	users := NewMemUsers(func(id uint) { purged = append(purged, id) })
	otps := NewMemOTPs()
	sessions := NewSessionRegistry(time.Minute, time.Hour)
	sender := &fakeSender{}
	return &testEnv{
		svc:      New(users, otps, sessions, sender, adminEmails),
		users:    users,
		otps:     otps,
		sessions: sessions,
		sender:   sender,
		purged:   &purged,
	}
}

func (e *testEnv) signup(t *testing.T, email, role string) *models.User {
	t.Helper()
	u, err := e.svc.SignUp(context.Background(), email, "someone", "pass123", role)
	require.NoError(t, err)
	return u
}

func TestSignUp_RoleWhitelist(t *testing.T) {
	t.Parallel()
	env := newTestEnv("boss@relief.org")

	_, err := env.svc.SignUp(context.Background(), "random@x.com", "r", "p", "admin")
	require.ErrorIs(t, err, ErrAdminNotAllowed)

	// email из allow-list проходит, сравнение регистронезависимое
	u, err := env.svc.SignUp(context.Background(), "  Boss@Relief.ORG ", "b", "p", "admin")
	require.NoError(t, err)
	require.Equal(t, "boss@relief.org", u.Email)
	require.Equal(t, models.RoleAdmin, u.Role)
}

func TestSignUp_InvalidRole(t *testing.T) {
	t.Parallel()
	env := newTestEnv()

	_, err := env.svc.SignUp(context.Background(), "a@b.c", "a", "p", "superuser")
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.signup(t, "dup@x.com", "user")

	_, err := env.svc.SignUp(context.Background(), "DUP@X.com", "d", "p", "user")
	require.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestSignUp_DefaultRoleAndHash(t *testing.T) {
	t.Parallel()
	env := newTestEnv()

	u, err := env.svc.SignUp(context.Background(), "a@b.c", "ann", "pass123", "")
	require.NoError(t, err)
	require.Equal(t, models.RoleUser, u.Role)
	require.NotEqual(t, "pass123", u.PasswordHash)
	require.True(t, CheckPassword("pass123", u.PasswordHash))
}

func TestLogin_InvalidCredentials(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.signup(t, "a@b.c", "user")

	// неизвестный email и неверный пароль неразличимы снаружи
	_, _, err := env.svc.Login(context.Background(), "nobody@b.c", "pass123")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = env.svc.Login(context.Background(), "a@b.c", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_IssuesOTP(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.signup(t, "a@b.c", "user")

	sess, delivered, err := env.svc.Login(context.Background(), "a@b.c", "pass123")
	require.NoError(t, err)
	require.True(t, delivered)
	require.Equal(t, StatePending, sess.State)
	require.Regexp(t, regexp.MustCompile(`^\d{6}$`), env.sender.last())

	rec, err := env.otps.Find(context.Background(), "a@b.c")
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, env.sender.last(), rec.Code)
	require.WithinDuration(t, time.Now().Add(OTPTTL), rec.ExpiresAt, 5*time.Second)
}

func TestVerifyOTP_Flow(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.signup(t, "a@b.c", "user")

	sess, _, err := env.svc.Login(context.Background(), "a@b.c", "pass123")
	require.NoError(t, err)
	code := env.sender.last()

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	_, err = env.svc.VerifyOTP(context.Background(), sess.Token, wrong)
	require.ErrorIs(t, err, ErrOTPMismatch)

	done, err := env.svc.VerifyOTP(context.Background(), sess.Token, code)
	require.NoError(t, err)
	require.Equal(t, StateAuthenticated, done.State)
	require.Equal(t, sess.UserID, done.UserID)

	// код сожжён при успехе
	rec, err := env.otps.Find(context.Background(), "a@b.c")
	require.NoError(t, err)
	require.Nil(t, rec)

	// новая pending-сессия с тем же кодом упирается в NotFound
	again := env.sessions.StartPending(sess.UserID, sess.Email, sess.Username, sess.Role)
	_, err = env.svc.VerifyOTP(context.Background(), again.Token, code)
	require.ErrorIs(t, err, ErrOTPNotFound)
}

func TestVerifyOTP_Expired(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.signup(t, "a@b.c", "user")

	sess := env.sessions.StartPending(1, "a@b.c", "ann", "user")
	require.NoError(t, env.otps.Replace(context.Background(), &models.OTPRecord{
		Email:     "a@b.c",
		Code:      "123456",
		ExpiresAt: time.Now().Add(-time.Second),
	}))

	_, err := env.svc.VerifyOTP(context.Background(), sess.Token, "123456")
	require.ErrorIs(t, err, ErrOTPExpired)
}

func TestVerifyOTP_WithoutLogin(t *testing.T) {
	t.Parallel()
	env := newTestEnv()

	_, err := env.svc.VerifyOTP(context.Background(), "no-such-token", "123456")
	require.ErrorIs(t, err, ErrSessionExpired)
}

func TestResendOTP_ReplacesCode(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.signup(t, "a@b.c", "user")

	sess, _, err := env.svc.Login(context.Background(), "a@b.c", "pass123")
	require.NoError(t, err)
	first := env.sender.last()

	delivered, err := env.svc.ResendOTP(context.Background(), sess.Token)
	require.NoError(t, err)
	require.True(t, delivered)
	second := env.sender.last()

	// живой код ровно один — последний высланный
	rec, err := env.otps.Find(context.Background(), "a@b.c")
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, second, rec.Code)

	if first != second {
		_, err = env.svc.VerifyOTP(context.Background(), sess.Token, first)
		require.ErrorIs(t, err, ErrOTPMismatch)
	}
}

func TestResendOTP_WithoutPendingSession(t *testing.T) {
	t.Parallel()
	env := newTestEnv()

	_, err := env.svc.ResendOTP(context.Background(), "bogus")
	require.ErrorIs(t, err, ErrSessionExpired)
}

func TestLogin_MailFailureKeepsCode(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.signup(t, "a@b.c", "user")
	env.sender.fail = true

	sess, delivered, err := env.svc.Login(context.Background(), "a@b.c", "pass123")
	require.NoError(t, err)
	require.False(t, delivered)

	// запись не пострадала: вход можно завершить кодом из хранилища
	rec, err := env.otps.Find(context.Background(), "a@b.c")
	require.NoError(t, err)
	require.NotNil(t, rec)

	done, err := env.svc.VerifyOTP(context.Background(), sess.Token, rec.Code)
	require.NoError(t, err)
	require.Equal(t, StateAuthenticated, done.State)
}

func TestLogout_ClearsSession(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.signup(t, "a@b.c", "user")

	sess, _, err := env.svc.Login(context.Background(), "a@b.c", "pass123")
	require.NoError(t, err)

	env.svc.Logout(sess.Token)
	require.Nil(t, env.sessions.Get(sess.Token))
}

func TestSetRole_AdminCheckNotBypassable(t *testing.T) {
	t.Parallel()
	env := newTestEnv("boss@relief.org")
	u := env.signup(t, "plain@x.com", "user")

	// повышение до admin после регистрации упирается в тот же allow-list
	_, err := env.svc.SetRole(context.Background(), u.ID, "admin")
	require.ErrorIs(t, err, ErrAdminNotAllowed)

	got, err := env.svc.SetRole(context.Background(), u.ID, "org")
	require.NoError(t, err)
	require.Equal(t, models.RoleOrg, got.Role)

	_, err = env.svc.SetRole(context.Background(), u.ID, "root")
	require.ErrorIs(t, err, ErrInvalidRole)

	_, err = env.svc.SetRole(context.Background(), 9999, "user")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteUser_Cascades(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	u := env.signup(t, "a@b.c", "user")

	require.NoError(t, env.svc.DeleteUser(context.Background(), u.ID))
	require.Equal(t, []uint{u.ID}, *env.purged)

	found, err := env.users.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.Nil(t, found)

	require.ErrorIs(t, env.svc.DeleteUser(context.Background(), u.ID), ErrUserNotFound)
}

func TestGenerateCode_Format(t *testing.T) {
	t.Parallel()

	re := regexp.MustCompile(`^\d{6}$`)
	for range 20 {
		code, err := GenerateCode()
		require.NoError(t, err)
		require.Regexp(t, re, code)
	}
}
