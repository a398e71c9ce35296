package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/impresia/tiraje-backend/internal/domain"
	"github.com/impresia/tiraje-backend/internal/repos"
	"github.com/impresia/tiraje-backend/internal/repos/testutil"
	"github.com/impresia/tiraje-backend/internal/requestdata"
)

func newAuthService(t *testing.T) AuthService {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	return NewAuthService(db, log, repos.NewUserRepo(db, log), repos.NewUserTokenRepo(db, log),
		"test-secret", time.Hour, 24*time.Hour)
}

// adminCtx carries an admin identity; registration is admin-gated once the
// user table is non-empty.
func adminCtx() context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID: uuid.New(),
		Name:   "Root",
		Role:   string(domain.RoleAdmin),
	})
}

func registerUser(t *testing.T, svc AuthService, role domain.Role) (*domain.User, string) {
	t.Helper()
	db := testutil.DB(t)
	employeeID := "emp-" + uuid.NewString()[:8]
	user, err := svc.RegisterUser(adminCtx(), &domain.User{
		EmployeeID: employeeID,
		Name:       "Marta",
		Role:       role,
	}, "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	t.Cleanup(func() {
		db.Where("user_id = ?", user.ID).Delete(&domain.UserToken{})
		db.Unscoped().Where("id = ?", user.ID).Delete(&domain.User{})
	})
	return user, "secret1"
}

func TestLoginAndTokenContext(t *testing.T) {
	svc := newAuthService(t)
	user, password := registerUser(t, svc, domain.RoleOperario)

	if _, _, _, err := svc.LoginUser(context.Background(), user.EmployeeID, "wrong"); err == nil {
		t.Fatal("login with wrong password should fail")
	}

	loggedIn, access, refresh, err := svc.LoginUser(context.Background(), user.EmployeeID, password)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loggedIn.ID != user.ID || access == "" || refresh == "" {
		t.Fatalf("login returned user %v access %q refresh %q", loggedIn.ID, access, refresh)
	}

	ctx, err := svc.SetContextFromToken(context.Background(), access)
	if err != nil {
		t.Fatalf("set context from token: %v", err)
	}
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		t.Fatal("no request data in context")
	}
	if rd.UserID != user.ID || rd.EmployeeID != user.EmployeeID || rd.Name != "Marta" || rd.Role != string(domain.RoleOperario) {
		t.Fatalf("request data = %+v", rd)
	}

	if _, err := svc.SetContextFromToken(context.Background(), access+"tampered"); err == nil {
		t.Fatal("tampered token should be rejected")
	}
}

func TestRefreshRotatesTokens(t *testing.T) {
	svc := newAuthService(t)
	user, password := registerUser(t, svc, domain.RoleSupervisor)

	_, _, refresh, err := svc.LoginUser(context.Background(), user.EmployeeID, password)
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	access2, refresh2, err := svc.RefreshUser(context.Background(), refresh)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if access2 == "" || refresh2 == "" || refresh2 == refresh {
		t.Fatalf("refresh did not rotate: access %q refresh %q", access2, refresh2)
	}

	// The old refresh token is burned.
	if _, _, err := svc.RefreshUser(context.Background(), refresh); err == nil {
		t.Fatal("reused refresh token should be rejected")
	}
}

func TestLogoutDeletesSession(t *testing.T) {
	svc := newAuthService(t)
	user, password := registerUser(t, svc, domain.RoleAdmin)

	_, access, refresh, err := svc.LoginUser(context.Background(), user.EmployeeID, password)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	ctx, err := svc.SetContextFromToken(context.Background(), access)
	if err != nil {
		t.Fatalf("set context: %v", err)
	}
	if err := svc.LogoutUser(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, _, err := svc.RefreshUser(context.Background(), refresh); err == nil {
		t.Fatal("refresh after logout should fail")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newAuthService(t)

	if _, err := svc.RegisterUser(context.Background(), &domain.User{
		EmployeeID: "e-" + uuid.NewString()[:8], Name: "X", Role: "gerente",
	}, "secret1"); err == nil {
		t.Fatal("unknown role should be rejected")
	}
	if _, err := svc.RegisterUser(context.Background(), &domain.User{
		EmployeeID: "e-" + uuid.NewString()[:8], Name: "X", Role: domain.RoleOperario,
	}, "ab"); err == nil {
		t.Fatal("short password should be rejected")
	}

	user, _ := registerUser(t, svc, domain.RoleOperario)
	if _, err := svc.RegisterUser(adminCtx(), &domain.User{
		EmployeeID: user.EmployeeID, Name: "Y", Role: domain.RoleOperario,
	}, "secret1"); err == nil {
		t.Fatal("duplicate employee id should be rejected")
	}
	if _, err := svc.RegisterUser(context.Background(), &domain.User{
		EmployeeID: "e-" + uuid.NewString()[:8], Name: "Z", Role: domain.RoleOperario,
	}, "secret1"); err == nil {
		t.Fatal("non-admin registration should be rejected once users exist")
	}
}
