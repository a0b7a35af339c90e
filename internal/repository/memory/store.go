// Package memory is an in-process implementation of the repositories for
// tests and local runs without a data service.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/baharkarakas/betzone-api/internal/apperr"
	"github.com/baharkarakas/betzone-api/internal/models"
	repo "github.com/baharkarakas/betzone-api/internal/repository"
	"github.com/baharkarakas/betzone-api/internal/supabase"
)

// ReferralBonus is credited to the referrer when a code is applied.
var ReferralBonus = decimal.NewFromInt(10)

type account struct {
	id       string
	email    string
	password string
}

type Store struct {
	mu  sync.Mutex
	Now func() time.Time

	profiles      map[string]*models.Profile
	games         map[string]*models.Game
	bets          []*models.Bet
	txns          []*models.Transaction
	payments      []*models.PaymentRequest
	notifications []*models.Notification
	referrals     []*models.Referral

	accounts map[string]*account // by email
	access   map[string]string   // access token -> user id
	refresh  map[string]string   // refresh token -> user id

	fail  map[string]error
	calls map[string]int
}

func New() *Store {
	return &Store{
		Now:      time.Now,
		profiles: map[string]*models.Profile{},
		games:    map[string]*models.Game{},
		accounts: map[string]*account{},
		access:   map[string]string{},
		refresh:  map[string]string{},
		fail:     map[string]error{},
		calls:    map[string]int{},
	}
}

func (s *Store) Repositories() repo.Repositories {
	return repo.Repositories{
		Profiles:      profiles{s},
		Games:         games{s},
		Bets:          bets{s},
		Transactions:  transactions{s},
		Payments:      payments{s},
		Notifications: notifications{s},
		Referrals:     referrals{s},
		Admin:         admin{s},
		Identity:      identity{s},
		Ping:          func(context.Context) error { return s.enter("ping") },
	}
}

// FailOn makes the named operation (e.g. "bets.Stats") return err.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[op] = err
}

// Calls returns how often op was invoked.
func (s *Store) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// enter counts the call and returns any injected failure. Callers hold no lock.
func (s *Store) enter(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[op]++
	return s.fail[op]
}

// Seeding helpers. Zero IDs and timestamps are filled in.

func (s *Store) AddProfile(p models.Profile) models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Role == "" {
		p.Role = models.RoleUser
	}
	if p.Status == "" {
		p.Status = models.StatusActive
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.Now()
	}
	p.UpdatedAt = p.CreatedAt
	cp := p
	s.profiles[p.ID] = &cp
	return p
}

// AddAccount registers login credentials for an existing profile.
func (s *Store) AddAccount(userID, email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[strings.ToLower(email)] = &account{id: userID, email: email, password: password}
}

// IssueToken returns an access token resolving to userID.
func (s *Store) IssueToken(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok := "mem-" + uuid.NewString()
	s.access[tok] = userID
	return tok
}

func (s *Store) AddGame(g models.Game) models.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = s.Now()
	}
	cp := g
	s.games[g.ID] = &cp
	return g
}

func (s *Store) AddBet(b models.Bet) models.Bet {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = s.Now()
	}
	cp := b
	s.bets = append(s.bets, &cp)
	return b
}

func (s *Store) AddTransaction(t models.Transaction) models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.Now()
	}
	cp := t
	s.txns = append(s.txns, &cp)
	return t
}

func (s *Store) AddPayment(p models.PaymentRequest) models.PaymentRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = models.PaymentPending
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.Now()
	}
	cp := p
	s.payments = append(s.payments, &cp)
	return p
}

func (s *Store) AddNotification(n models.Notification) models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.Now()
	}
	cp := n
	s.notifications = append(s.notifications, &cp)
	return n
}

// Profile returns a copy of the stored profile.
func (s *Store) Profile(id string) (models.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return models.Profile{}, false
	}
	return *p, true
}

// Notifications returns copies of userID's notifications.
func (s *Store) Notifications(userID string) []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out
}

// credit moves money and writes a ledger row. Caller holds s.mu.
func (s *Store) credit(userID string, amount decimal.Decimal, typ models.TransactionType, ref, desc string) error {
	p, ok := s.profiles[userID]
	if !ok {
		return apperr.NotFound("Profile not found")
	}
	next := p.Balance.Add(amount)
	if next.IsNegative() {
		return apperr.Validation("Insufficient balance")
	}
	p.Balance = next
	t := &models.Transaction{
		ID:           uuid.NewString(),
		UserID:       userID,
		Type:         typ,
		Amount:       amount,
		BalanceAfter: next,
		CreatedAt:    s.Now(),
	}
	if ref != "" {
		t.ReferenceID = &ref
	}
	if desc != "" {
		t.Description = &desc
	}
	s.txns = append(s.txns, t)
	return nil
}

// page sorts newest first and slices; it returns copies and the total.
func page[T any](rows []*T, created func(*T) time.Time, limit, offset int) ([]T, int) {
	sorted := make([]*T, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool { return created(sorted[i]).After(created(sorted[j])) })

	total := len(sorted)
	out := []T{}
	for i := max(offset, 0); i < total && i < offset+limit; i++ {
		out = append(out, *sorted[i])
	}
	return out, total
}

func within(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

var _ repo.Identity = identity{}

type identity struct{ s *Store }

func (i identity) SignUp(_ context.Context, req supabase.SignUpRequest) (*supabase.Session, error) {
	if err := i.s.enter("identity.SignUp"); err != nil {
		return nil, err
	}
	i.s.mu.Lock()
	defer i.s.mu.Unlock()
	key := strings.ToLower(req.Email)
	if _, ok := i.s.accounts[key]; ok {
		return nil, apperr.Conflict("User already registered", nil)
	}
	acc := &account{id: uuid.NewString(), email: req.Email, password: req.Password}
	i.s.accounts[key] = acc
	return i.s.newSession(acc), nil
}

func (i identity) SignIn(_ context.Context, email, password string) (*supabase.Session, error) {
	if err := i.s.enter("identity.SignIn"); err != nil {
		return nil, err
	}
	i.s.mu.Lock()
	defer i.s.mu.Unlock()
	acc, ok := i.s.accounts[strings.ToLower(email)]
	if !ok || acc.password != password {
		return nil, apperr.Unauthenticated("Invalid email or password")
	}
	return i.s.newSession(acc), nil
}

func (i identity) Refresh(_ context.Context, refreshToken string) (*supabase.Session, error) {
	if err := i.s.enter("identity.Refresh"); err != nil {
		return nil, err
	}
	i.s.mu.Lock()
	defer i.s.mu.Unlock()
	uid, ok := i.s.refresh[refreshToken]
	if !ok {
		return nil, apperr.Unauthenticated("")
	}
	delete(i.s.refresh, refreshToken)
	for _, acc := range i.s.accounts {
		if acc.id == uid {
			return i.s.newSession(acc), nil
		}
	}
	return nil, apperr.Unauthenticated("")
}

func (i identity) GetUser(_ context.Context, accessToken string) (*supabase.User, error) {
	if err := i.s.enter("identity.GetUser"); err != nil {
		return nil, err
	}
	i.s.mu.Lock()
	defer i.s.mu.Unlock()
	uid, ok := i.s.access[accessToken]
	if !ok {
		return nil, apperr.Unauthenticated("")
	}
	u := &supabase.User{ID: uid, Aud: "authenticated", Role: "authenticated"}
	if p, ok := i.s.profiles[uid]; ok {
		u.Email = p.Email
	}
	return u, nil
}

func (i identity) SignOut(_ context.Context, accessToken string) error {
	if err := i.s.enter("identity.SignOut"); err != nil {
		return err
	}
	i.s.mu.Lock()
	defer i.s.mu.Unlock()
	delete(i.s.access, accessToken)
	return nil
}

// newSession issues fresh tokens. Caller holds s.mu.
func (s *Store) newSession(acc *account) *supabase.Session {
	at, rt := "mem-"+uuid.NewString(), "mem-r-"+uuid.NewString()
	s.access[at] = acc.id
	s.refresh[rt] = acc.id
	return &supabase.Session{
		AccessToken:  at,
		RefreshToken: rt,
		TokenType:    "bearer",
		ExpiresIn:    3600,
		ExpiresAt:    s.Now().Add(time.Hour).Unix(),
		User:         &supabase.User{ID: acc.id, Email: acc.email, Aud: "authenticated"},
	}
}
