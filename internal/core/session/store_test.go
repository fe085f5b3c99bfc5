package session

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"

	"github.com/appart/appart-client/internal/core/domain"
)

type stubStateStore struct {
	records map[string][]byte
	saves   int
}

func newStubStateStore() *stubStateStore {
	return &stubStateStore{records: make(map[string][]byte)}
}

func (s *stubStateStore) Load(key string) ([]byte, bool, error) {
	data, ok := s.records[key]
	return data, ok, nil
}

func (s *stubStateStore) Save(key string, data []byte) error {
	s.saves++
	s.records[key] = append([]byte(nil), data...)
	return nil
}

func (s *stubStateStore) Delete(key string) error {
	delete(s.records, key)
	return nil
}

func newTestStore(t *testing.T) (*Store, *stubStateStore) {
	t.Helper()
	state := newStubStateStore()
	return New(state, zerolog.Nop()), state
}

func testUser(role domain.Role) *domain.User {
	return &domain.User{ID: 7, Email: "maya@example.com", Name: "Maya", Role: role}
}

func TestSetTokens_DerivesAuthentication(t *testing.T) {
	store, _ := newTestStore(t)

	store.SetTokens(&domain.TokenPair{Access: "a1", Refresh: "r1"})
	if !store.IsAuthenticated() {
		t.Fatalf("expected authenticated after SetTokens")
	}
	pair := store.Tokens()
	if pair == nil || pair.Access != "a1" || pair.Refresh != "r1" {
		t.Fatalf("unexpected pair: %+v", pair)
	}

	store.SetTokens(nil)
	if store.IsAuthenticated() {
		t.Fatalf("expected unauthenticated after clearing tokens")
	}
	if store.Tokens() != nil {
		t.Fatalf("expected nil pair after clear")
	}
}

func TestSetTokens_NeverHalfSet(t *testing.T) {
	store, _ := newTestStore(t)

	// Overwrites replace the pair wholesale; there is no path that writes
	// one half without the other.
	store.SetTokens(&domain.TokenPair{Access: "a1", Refresh: "r1"})
	store.SetTokens(&domain.TokenPair{Access: "a2", Refresh: "r2"})
	pair := store.Tokens()
	if pair.Access != "a2" || pair.Refresh != "r2" {
		t.Fatalf("expected matched pair a2/r2, got %+v", pair)
	}
}

func TestLogin_CompositeTransition(t *testing.T) {
	store, _ := newTestStore(t)

	store.Login(testUser(domain.RoleArtist), &domain.TokenPair{Access: "a", Refresh: "r"})

	if !store.IsAuthenticated() {
		t.Fatalf("expected authenticated after login")
	}
	if got := store.User(); got == nil || got.Email != "maya@example.com" {
		t.Fatalf("unexpected user: %+v", got)
	}
	if !store.RoleSelected() {
		t.Fatalf("expected roleSelected for user with role")
	}
	if store.ActiveMode() != domain.ModeArtist {
		t.Fatalf("expected mode seeded from artist role, got %s", store.ActiveMode())
	}
}

func TestLogin_WithoutRole(t *testing.T) {
	store, _ := newTestStore(t)

	store.Login(testUser(""), &domain.TokenPair{Access: "a", Refresh: "r"})
	if store.RoleSelected() {
		t.Fatalf("expected roleSelected=false for user without role")
	}
	if store.ActiveMode() != domain.ModeUser {
		t.Fatalf("expected default mode, got %s", store.ActiveMode())
	}
}

func TestLogin_PreservesExplicitMode(t *testing.T) {
	store, _ := newTestStore(t)

	store.SetActiveMode(domain.ModeArtist)
	store.Login(testUser(domain.RoleCustomer), &domain.TokenPair{Access: "a", Refresh: "r"})
	if store.ActiveMode() != domain.ModeArtist {
		t.Fatalf("login must not clobber a mode the user picked this session")
	}
}

func TestLogout_PreservesWelcomeFlag(t *testing.T) {
	store, _ := newTestStore(t)

	store.MarkWelcomeSeen()
	store.Login(testUser(domain.RoleCustomer), &domain.TokenPair{Access: "a", Refresh: "r"})
	store.Logout()

	if store.IsAuthenticated() || store.User() != nil || store.RoleSelected() {
		t.Fatalf("logout did not clear session")
	}
	if store.ActiveMode() != domain.ModeUser {
		t.Fatalf("logout must reset active mode")
	}
	if !store.HasSeenWelcome() {
		t.Fatalf("logout must preserve hasSeenWelcome")
	}

	// Idempotent.
	store.Logout()
	if store.IsAuthenticated() || !store.HasSeenWelcome() {
		t.Fatalf("second logout changed state")
	}
}

func TestUpdateUser_RoleForcesSelection(t *testing.T) {
	store, _ := newTestStore(t)

	store.Login(testUser(""), &domain.TokenPair{Access: "a", Refresh: "r"})
	if store.RoleSelected() {
		t.Fatalf("precondition: roleSelected should be false")
	}

	role := domain.RoleArtist
	store.UpdateUser(domain.UserPatch{Role: &role})

	if !store.RoleSelected() {
		t.Fatalf("role update must force roleSelected")
	}
	if got := store.User(); got.Role != domain.RoleArtist {
		t.Fatalf("unexpected role: %s", got.Role)
	}
}

func TestUpdateUser_ShallowMerge(t *testing.T) {
	store, _ := newTestStore(t)
	store.Login(testUser(domain.RoleCustomer), &domain.TokenPair{Access: "a", Refresh: "r"})

	bio := "painter of small dogs"
	store.UpdateUser(domain.UserPatch{Bio: &bio})

	got := store.User()
	if got.Bio != bio {
		t.Fatalf("bio not merged: %+v", got)
	}
	if got.Name != "Maya" || got.Email != "maya@example.com" {
		t.Fatalf("untouched fields were modified: %+v", got)
	}
}

func TestUpdateUser_NoopWithoutUser(t *testing.T) {
	store, state := newTestStore(t)
	before := state.saves

	name := "ghost"
	store.UpdateUser(domain.UserPatch{Name: &name})

	if store.User() != nil {
		t.Fatalf("update on empty session created a user")
	}
	if state.saves != before {
		t.Fatalf("no-op update must not persist")
	}
}

func TestMarkWelcomeSeen_Monotonic(t *testing.T) {
	store, _ := newTestStore(t)

	store.MarkWelcomeSeen()
	store.MarkWelcomeSeen()
	if !store.HasSeenWelcome() {
		t.Fatalf("expected hasSeenWelcome=true")
	}
}

func TestSetUser_SelfHealsRoleSelection(t *testing.T) {
	store, _ := newTestStore(t)

	store.SetUser(testUser(domain.RoleCustomer))
	if !store.RoleSelected() {
		t.Fatalf("non-empty role must mark roleSelected")
	}

	store.SetUser(testUser(""))
	if store.RoleSelected() {
		t.Fatalf("roleSelected must track role presence on SetUser")
	}

	// Replacing the user never touches authentication: that is derived from
	// token presence only.
	if store.IsAuthenticated() {
		t.Fatalf("SetUser must not grant authentication")
	}
}

func TestPersistence_RoundTrip(t *testing.T) {
	state := newStubStateStore()
	store := New(state, zerolog.Nop())

	store.MarkWelcomeSeen()
	store.Login(testUser(domain.RoleArtist), &domain.TokenPair{Access: "a", Refresh: "r"})

	revived := New(state, zerolog.Nop())
	if !revived.IsAuthenticated() {
		t.Fatalf("rehydrated session should be authenticated")
	}
	if got := revived.User(); got == nil || got.ID != 7 {
		t.Fatalf("rehydrated user mismatch: %+v", got)
	}
	if !revived.RoleSelected() || !revived.HasSeenWelcome() {
		t.Fatalf("rehydrated flags lost")
	}
	if revived.ActiveMode() != domain.ModeArtist {
		t.Fatalf("rehydrated mode mismatch: %s", revived.ActiveMode())
	}
}

func TestPersistence_RecordLayout(t *testing.T) {
	state := newStubStateStore()
	store := New(state, zerolog.Nop())
	store.Login(testUser(domain.RoleCustomer), &domain.TokenPair{Access: "a", Refresh: "r"})

	data, ok, _ := state.Load("auth-storage")
	if !ok {
		t.Fatalf("expected record under auth-storage key")
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("record is not JSON: %v", err)
	}
	for _, key := range []string{"user", "accessToken", "refreshToken", "isAuthenticated", "activeMode", "roleSelected", "hasSeenWelcome"} {
		if _, present := raw[key]; !present {
			t.Fatalf("persisted record missing %q", key)
		}
	}
}

func TestRehydrate_CorruptRecord(t *testing.T) {
	state := newStubStateStore()
	state.records["auth-storage"] = []byte("{not json")

	store := New(state, zerolog.Nop())
	if store.IsAuthenticated() || store.User() != nil || store.HasSeenWelcome() {
		t.Fatalf("corrupt record must fall back to empty session")
	}
}

func TestRehydrate_HalfPairDropped(t *testing.T) {
	state := newStubStateStore()
	state.records["auth-storage"] = []byte(`{"accessToken":"a","refreshToken":"","isAuthenticated":true}`)

	store := New(state, zerolog.Nop())
	if store.IsAuthenticated() {
		t.Fatalf("half-written pair must be dropped whole")
	}
	if store.Tokens() != nil {
		t.Fatalf("expected no tokens after half-pair rehydrate")
	}
}
