package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/baharkarakas/betzone-api/internal/apperr"
	"github.com/baharkarakas/betzone-api/internal/models"
	repo "github.com/baharkarakas/betzone-api/internal/repository"
)

var (
	_ repo.Profiles      = profiles{}
	_ repo.Games         = games{}
	_ repo.Bets          = bets{}
	_ repo.Transactions  = transactions{}
	_ repo.Payments      = payments{}
	_ repo.Notifications = notifications{}
	_ repo.Referrals     = referrals{}
	_ repo.Admin         = admin{}
)

// ---------- profiles ----------

type profiles struct{ s *Store }

func (r profiles) Get(_ context.Context, id string) (models.Profile, error) {
	if err := r.s.enter("profiles.Get"); err != nil {
		return models.Profile{}, err
	}
	if p, ok := r.s.Profile(id); ok {
		return p, nil
	}
	return models.Profile{}, apperr.NotFound("Profile not found")
}

func (r profiles) Create(_ context.Context, p models.Profile) (models.Profile, error) {
	if err := r.s.enter("profiles.Create"); err != nil {
		return models.Profile{}, err
	}
	r.s.mu.Lock()
	for _, existing := range r.s.profiles {
		if strings.EqualFold(existing.Username, p.Username) || strings.EqualFold(existing.Email, p.Email) {
			r.s.mu.Unlock()
			return models.Profile{}, apperr.Conflict("Username or email already taken", nil)
		}
	}
	r.s.mu.Unlock()
	p.Role, p.Status, p.Balance = models.RoleUser, models.StatusActive, decimal.Zero
	return r.s.AddProfile(p), nil
}

func (r profiles) Update(_ context.Context, id string, u models.ProfileUpdate) (models.Profile, error) {
	if err := r.s.enter("profiles.Update"); err != nil {
		return models.Profile{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return models.Profile{}, apperr.NotFound("Profile not found")
	}
	if u.Username != nil {
		for _, other := range r.s.profiles {
			if other.ID != id && strings.EqualFold(other.Username, *u.Username) {
				return models.Profile{}, apperr.Conflict("Username already taken", nil)
			}
		}
		p.Username = *u.Username
	}
	if u.FullName != nil {
		p.FullName = u.FullName
	}
	if u.Phone != nil {
		p.Phone = u.Phone
	}
	p.UpdatedAt = r.s.Now()
	return *p, nil
}

func (r profiles) SetStatus(_ context.Context, id, status string) (models.Profile, error) {
	if err := r.s.enter("profiles.SetStatus"); err != nil {
		return models.Profile{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return models.Profile{}, apperr.NotFound("User not found")
	}
	p.Status = status
	return *p, nil
}

func (r profiles) SetReferralCode(_ context.Context, id, code string) (models.Profile, error) {
	if err := r.s.enter("profiles.SetReferralCode"); err != nil {
		return models.Profile{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return models.Profile{}, apperr.NotFound("Profile not found")
	}
	if p.ReferralCode != nil {
		return *p, nil
	}
	for _, other := range r.s.profiles {
		if other.ReferralCode != nil && *other.ReferralCode == code {
			return models.Profile{}, apperr.Conflict("Referral code already in use", nil)
		}
	}
	p.ReferralCode = &code
	return *p, nil
}

func (r profiles) SetTelegramChat(_ context.Context, id string, chatID int64) error {
	if err := r.s.enter("profiles.SetTelegramChat"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return apperr.NotFound("Profile not found")
	}
	p.TelegramChatID = &chatID
	return nil
}

func (r profiles) List(_ context.Context, f models.ProfileFilter, limit, offset int) ([]models.Profile, int, error) {
	if err := r.s.enter("profiles.List"); err != nil {
		return nil, 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	search := strings.ToLower(f.Search)
	var rows []*models.Profile
	for _, p := range r.s.profiles {
		if f.Role != "" && p.Role != f.Role || f.Status != "" && p.Status != f.Status {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Username+" "+p.Email), search) {
			continue
		}
		rows = append(rows, p)
	}
	out, total := page(rows, func(p *models.Profile) time.Time { return p.CreatedAt }, limit, offset)
	return out, total, nil
}

func (r profiles) AdjustBalance(_ context.Context, id string, amount decimal.Decimal, reason, _ string) (decimal.Decimal, error) {
	if err := r.s.enter("profiles.AdjustBalance"); err != nil {
		return decimal.Zero, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.credit(id, amount, models.TxnAdjustment, "", reason); err != nil {
		return decimal.Zero, err
	}
	return r.s.profiles[id].Balance, nil
}

// ---------- games ----------

type games struct{ s *Store }

func (r games) Get(_ context.Context, id string) (models.Game, error) {
	if err := r.s.enter("games.Get"); err != nil {
		return models.Game{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.games[id]
	if !ok {
		return models.Game{}, apperr.NotFound("Game not found")
	}
	return *g, nil
}

func (r games) List(_ context.Context, f models.GameFilter, limit, offset int) ([]models.Game, int, error) {
	if err := r.s.enter("games.List"); err != nil {
		return nil, 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []*models.Game
	for _, g := range r.s.games {
		if f.Status != "" && string(g.Status) != f.Status || f.Type != "" && g.GameType != f.Type {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(g.Title), strings.ToLower(f.Search)) {
			continue
		}
		rows = append(rows, g)
	}
	out, total := page(rows, func(g *models.Game) time.Time { return g.StartTime }, limit, offset)
	return out, total, nil
}

func (r games) Upcoming(_ context.Context, after time.Time, limit int) ([]models.Game, error) {
	if err := r.s.enter("games.Upcoming"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []*models.Game
	for _, g := range r.s.games {
		if g.Status == models.GameScheduled && g.StartTime.After(after) {
			rows = append(rows, g)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].StartTime.Before(rows[j].StartTime) })
	out := []models.Game{}
	for i := 0; i < len(rows) && i < limit; i++ {
		out = append(out, *rows[i])
	}
	return out, nil
}

func (r games) Create(_ context.Context, g models.NewGame) (models.Game, error) {
	if err := r.s.enter("games.Create"); err != nil {
		return models.Game{}, err
	}
	return r.s.AddGame(models.Game{
		Title:     g.Title,
		GameType:  g.GameType,
		Status:    g.Status,
		StartTime: g.StartTime,
		EndTime:   g.EndTime,
		MinBet:    g.MinBet,
		MaxBet:    g.MaxBet,
		Options:   g.Options,
	}), nil
}

func (r games) SetStatus(_ context.Context, id string, status models.GameStatus) (models.Game, error) {
	if err := r.s.enter("games.SetStatus"); err != nil {
		return models.Game{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.games[id]
	if !ok {
		return models.Game{}, apperr.NotFound("Game not found")
	}
	g.Status = status
	return *g, nil
}

func (r games) Settle(_ context.Context, id, result string) ([]models.SettledBet, error) {
	if err := r.s.enter("games.Settle"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.games[id]
	if !ok {
		return nil, apperr.NotFound("Game not found")
	}
	if g.Status == models.GameSettled || g.Status == models.GameCancelled {
		return nil, apperr.Validation("Game is already settled")
	}
	if _, ok := g.Option(result); !ok {
		return nil, apperr.Validation("Result is not one of the game options")
	}
	now := r.s.Now()
	var out []models.SettledBet
	for _, b := range r.s.bets {
		if b.GameID != id || b.Status != models.BetPending {
			continue
		}
		b.SettledAt = &now
		if b.Selection == result {
			b.Status, b.Payout = models.BetWon, b.PotentialPayout
			if err := r.s.credit(b.UserID, b.Payout, models.TxnPayout, b.ID, "Bet won: "+g.Title); err != nil {
				return nil, err
			}
		} else {
			b.Status, b.Payout = models.BetLost, decimal.Zero
		}
		out = append(out, models.SettledBet{BetID: b.ID, UserID: b.UserID, Status: b.Status, Payout: b.Payout})
	}
	g.Status, g.Result = models.GameSettled, &result
	return out, nil
}

func (r games) Delete(_ context.Context, id string) error {
	if err := r.s.enter("games.Delete"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.games[id]; !ok {
		return apperr.NotFound("Game not found")
	}
	for _, b := range r.s.bets {
		if b.GameID == id {
			return apperr.Conflict("Game has bets and cannot be deleted", nil)
		}
	}
	delete(r.s.games, id)
	return nil
}

// ---------- bets ----------

type bets struct{ s *Store }

func (r bets) Place(_ context.Context, in models.PlaceBet) (models.Bet, error) {
	if err := r.s.enter("bets.Place"); err != nil {
		return models.Bet{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.games[in.GameID]
	if !ok {
		return models.Bet{}, apperr.NotFound("Game not found")
	}
	if g.Status != models.GameScheduled && g.Status != models.GameLive {
		return models.Bet{}, apperr.Validation("Game is not open for betting")
	}
	opt, ok := g.Option(in.Selection)
	if !ok {
		return models.Bet{}, apperr.Validation("Invalid selection")
	}
	if in.Amount.LessThan(g.MinBet) || (!g.MaxBet.IsZero() && in.Amount.GreaterThan(g.MaxBet)) {
		return models.Bet{}, apperr.Validation("Bet amount is outside the allowed range")
	}
	b := &models.Bet{
		ID:              uuid.NewString(),
		UserID:          in.UserID,
		GameID:          in.GameID,
		Selection:       in.Selection,
		Amount:          in.Amount,
		Odds:            opt.Odds,
		PotentialPayout: in.Amount.Mul(opt.Odds).Round(2),
		Status:          models.BetPending,
		CreatedAt:       r.s.Now(),
	}
	if err := r.s.credit(in.UserID, in.Amount.Neg(), models.TxnBet, b.ID, "Bet on "+g.Title); err != nil {
		return models.Bet{}, err
	}
	r.s.bets = append(r.s.bets, b)
	return *b, nil
}

func (r bets) Get(_ context.Context, userID, id string) (models.Bet, error) {
	if err := r.s.enter("bets.Get"); err != nil {
		return models.Bet{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.bets {
		if b.ID == id && b.UserID == userID {
			return *b, nil
		}
	}
	return models.Bet{}, apperr.NotFound("Bet not found")
}

func (r bets) List(_ context.Context, userID string, f models.BetFilter, limit, offset int) ([]models.Bet, int, error) {
	if err := r.s.enter("bets.List"); err != nil {
		return nil, 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []*models.Bet
	for _, b := range r.s.bets {
		if b.UserID != userID || f.Status != "" && string(b.Status) != f.Status || f.GameID != "" && b.GameID != f.GameID {
			continue
		}
		if within(b.CreatedAt, f.From, f.To) {
			rows = append(rows, b)
		}
	}
	out, total := page(rows, func(b *models.Bet) time.Time { return b.CreatedAt }, limit, offset)
	return out, total, nil
}

func (r bets) Stats(_ context.Context, userID string) (models.BetStats, error) {
	if err := r.s.enter("bets.Stats"); err != nil {
		return models.BetStats{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st := models.BetStats{TotalStaked: decimal.Zero, TotalWon: decimal.Zero, WinRate: decimal.Zero}
	for _, b := range r.s.bets {
		if b.UserID != userID {
			continue
		}
		st.TotalBets++
		st.TotalStaked = st.TotalStaked.Add(b.Amount)
		switch b.Status {
		case models.BetPending:
			st.Pending++
		case models.BetWon:
			st.Won++
			st.TotalWon = st.TotalWon.Add(b.Payout)
		case models.BetLost:
			st.Lost++
		}
	}
	if settled := st.Won + st.Lost; settled > 0 {
		st.WinRate = decimal.NewFromInt(int64(st.Won * 100)).Div(decimal.NewFromInt(int64(settled))).Round(2)
	}
	return st, nil
}

// ---------- transactions ----------

type transactions struct{ s *Store }

func (r transactions) List(_ context.Context, userID string, f models.TransactionFilter, limit, offset int) ([]models.Transaction, int, error) {
	if err := r.s.enter("transactions.List"); err != nil {
		return nil, 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []*models.Transaction
	for _, t := range r.s.txns {
		if t.UserID != userID || f.Type != "" && string(t.Type) != f.Type {
			continue
		}
		if within(t.CreatedAt, f.From, f.To) {
			rows = append(rows, t)
		}
	}
	out, total := page(rows, func(t *models.Transaction) time.Time { return t.CreatedAt }, limit, offset)
	return out, total, nil
}

// ---------- payments ----------

type payments struct{ s *Store }

func (r payments) Create(_ context.Context, in models.NewPaymentRequest) (models.PaymentRequest, error) {
	if err := r.s.enter("payments.Create"); err != nil {
		return models.PaymentRequest{}, err
	}
	r.s.mu.Lock()
	for _, p := range r.s.payments {
		if p.ID == in.ID {
			r.s.mu.Unlock()
			return models.PaymentRequest{}, apperr.Conflict("Resource already exists", nil)
		}
	}
	r.s.mu.Unlock()
	return r.s.AddPayment(models.PaymentRequest{
		ID:             in.ID,
		UserID:         in.UserID,
		Kind:           in.Kind,
		Amount:         in.Amount,
		Method:         in.Method,
		Reference:      in.Reference,
		AccountDetails: in.AccountDetails,
		Status:         in.Status,
	}), nil
}

func (r payments) Get(_ context.Context, id string) (models.PaymentRequest, error) {
	if err := r.s.enter("payments.Get"); err != nil {
		return models.PaymentRequest{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.payments {
		if p.ID == id {
			return *p, nil
		}
	}
	return models.PaymentRequest{}, apperr.NotFound("Payment request not found")
}

func (r payments) List(_ context.Context, f models.PaymentFilter, limit, offset int) ([]models.PaymentRequest, int, error) {
	if err := r.s.enter("payments.List"); err != nil {
		return nil, 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []*models.PaymentRequest
	for _, p := range r.s.payments {
		if f.UserID != "" && p.UserID != f.UserID || f.Kind != "" && string(p.Kind) != f.Kind || f.Status != "" && string(p.Status) != f.Status {
			continue
		}
		rows = append(rows, p)
	}
	out, total := page(rows, func(p *models.PaymentRequest) time.Time { return p.CreatedAt }, limit, offset)
	return out, total, nil
}

func (r payments) PendingTotal(_ context.Context, userID string, kind models.PaymentKind) (decimal.Decimal, error) {
	if err := r.s.enter("payments.PendingTotal"); err != nil {
		return decimal.Zero, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total := decimal.Zero
	for _, p := range r.s.payments {
		if p.UserID == userID && p.Kind == kind && p.Status == models.PaymentPending {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}

func (r payments) CountPending(_ context.Context) (int, error) {
	if err := r.s.enter("payments.CountPending"); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, p := range r.s.payments {
		if p.Status == models.PaymentPending {
			n++
		}
	}
	return n, nil
}

func (r payments) Process(_ context.Context, id string, approve bool, adminID, note string) (models.PaymentRequest, error) {
	if err := r.s.enter("payments.Process"); err != nil {
		return models.PaymentRequest{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var p *models.PaymentRequest
	for _, row := range r.s.payments {
		if row.ID == id {
			p = row
		}
	}
	if p == nil {
		return models.PaymentRequest{}, apperr.NotFound("Payment request not found")
	}
	if p.Status != models.PaymentPending {
		return models.PaymentRequest{}, apperr.Validation("Payment request already processed")
	}
	if approve {
		amount, typ := p.Amount, models.TxnDeposit
		if p.Kind == models.PaymentWithdrawal {
			amount, typ = p.Amount.Neg(), models.TxnWithdrawal
		}
		if err := r.s.credit(p.UserID, amount, typ, p.ID, ""); err != nil {
			return models.PaymentRequest{}, err
		}
		p.Status = models.PaymentApproved
	} else {
		p.Status = models.PaymentRejected
	}
	now := r.s.Now()
	p.ProcessedBy, p.ProcessedAt = &adminID, &now
	if note != "" {
		p.AdminNote = &note
	}
	return *p, nil
}

// ---------- notifications ----------

type notifications struct{ s *Store }

func (r notifications) Create(_ context.Context, n models.NewNotification) (models.Notification, error) {
	if err := r.s.enter("notifications.Create"); err != nil {
		return models.Notification{}, err
	}
	return r.s.AddNotification(models.Notification{UserID: n.UserID, Title: n.Title, Message: n.Message, Type: n.Type}), nil
}

func (r notifications) List(_ context.Context, userID string, unreadOnly bool, limit, offset int) ([]models.Notification, int, error) {
	if err := r.s.enter("notifications.List"); err != nil {
		return nil, 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []*models.Notification
	for _, n := range r.s.notifications {
		if n.UserID == userID && (!unreadOnly || !n.IsRead) {
			rows = append(rows, n)
		}
	}
	out, total := page(rows, func(n *models.Notification) time.Time { return n.CreatedAt }, limit, offset)
	return out, total, nil
}

func (r notifications) UnreadCount(_ context.Context, userID string) (int, error) {
	if err := r.s.enter("notifications.UnreadCount"); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, row := range r.s.notifications {
		if row.UserID == userID && !row.IsRead {
			n++
		}
	}
	return n, nil
}

func (r notifications) MarkRead(_ context.Context, userID, id string) (models.Notification, error) {
	if err := r.s.enter("notifications.MarkRead"); err != nil {
		return models.Notification{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, n := range r.s.notifications {
		if n.ID == id && n.UserID == userID {
			now := r.s.Now()
			n.IsRead, n.ReadAt = true, &now
			return *n, nil
		}
	}
	return models.Notification{}, apperr.NotFound("Notification not found")
}

func (r notifications) MarkAllRead(_ context.Context, userID string) (int, error) {
	if err := r.s.enter("notifications.MarkAllRead"); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now, count := r.s.Now(), 0
	for _, n := range r.s.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead, n.ReadAt = true, &now
			count++
		}
	}
	return count, nil
}

func (r notifications) Delete(_ context.Context, userID, id string) error {
	if err := r.s.enter("notifications.Delete"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, n := range r.s.notifications {
		if n.ID == id && n.UserID == userID {
			r.s.notifications = append(r.s.notifications[:i], r.s.notifications[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("Notification not found")
}

func (r notifications) Broadcast(_ context.Context, in models.NewNotification) (int, error) {
	if err := r.s.enter("notifications.Broadcast"); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	var ids []string
	for id, p := range r.s.profiles {
		if p.IsActive() {
			ids = append(ids, id)
		}
	}
	r.s.mu.Unlock()
	for _, id := range ids {
		r.s.AddNotification(models.Notification{UserID: id, Title: in.Title, Message: in.Message, Type: in.Type})
	}
	return len(ids), nil
}

// ---------- referrals ----------

type referrals struct{ s *Store }

func (r referrals) List(_ context.Context, referrerID string, limit, offset int) ([]models.Referral, int, error) {
	if err := r.s.enter("referrals.List"); err != nil {
		return nil, 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []*models.Referral
	for _, ref := range r.s.referrals {
		if ref.ReferrerID == referrerID {
			rows = append(rows, ref)
		}
	}
	out, total := page(rows, func(ref *models.Referral) time.Time { return ref.CreatedAt }, limit, offset)
	return out, total, nil
}

func (r referrals) Stats(_ context.Context, referrerID string) (models.ReferralStats, error) {
	if err := r.s.enter("referrals.Stats"); err != nil {
		return models.ReferralStats{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st := models.ReferralStats{TotalBonus: decimal.Zero}
	for _, ref := range r.s.referrals {
		if ref.ReferrerID == referrerID {
			st.TotalReferrals++
			st.TotalBonus = st.TotalBonus.Add(ref.BonusAmount)
		}
	}
	return st, nil
}

func (r referrals) Apply(_ context.Context, referredID, code string) error {
	if err := r.s.enter("referrals.Apply"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	referred, ok := r.s.profiles[referredID]
	if !ok {
		return apperr.NotFound("Profile not found")
	}
	if referred.ReferredBy != nil {
		return apperr.Validation("Referral already applied")
	}
	var referrer *models.Profile
	for _, p := range r.s.profiles {
		if p.ReferralCode != nil && strings.EqualFold(*p.ReferralCode, code) {
			referrer = p
		}
	}
	if referrer == nil {
		return apperr.Validation("Invalid referral code")
	}
	if referrer.ID == referredID {
		return apperr.Validation("You cannot refer yourself")
	}
	referred.ReferredBy = &referrer.ID
	name := referred.Username
	r.s.referrals = append(r.s.referrals, &models.Referral{
		ID:               uuid.NewString(),
		ReferrerID:       referrer.ID,
		ReferredID:       referredID,
		ReferredUsername: &name,
		BonusAmount:      ReferralBonus,
		Status:           "credited",
		CreatedAt:        r.s.Now(),
	})
	return r.s.credit(referrer.ID, ReferralBonus, models.TxnReferralBonus, referredID, "Referral bonus")
}

// ---------- admin ----------

type admin struct{ s *Store }

func (r admin) Stats(_ context.Context) (models.AdminStats, error) {
	if err := r.s.enter("admin.Stats"); err != nil {
		return models.AdminStats{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st := models.AdminStats{
		TotalDeposits:    decimal.Zero,
		TotalWithdrawals: decimal.Zero,
		TotalStaked:      decimal.Zero,
		TotalPayouts:     decimal.Zero,
	}
	y, m, d := r.s.Now().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	for _, p := range r.s.profiles {
		st.TotalUsers++
		if p.IsActive() {
			st.ActiveUsers++
		}
		if !p.CreatedAt.Before(today) {
			st.NewUsersToday++
		}
	}
	for _, p := range r.s.payments {
		switch {
		case p.Status != models.PaymentApproved:
		case p.Kind == models.PaymentDeposit:
			st.TotalDeposits = st.TotalDeposits.Add(p.Amount)
		default:
			st.TotalWithdrawals = st.TotalWithdrawals.Add(p.Amount)
		}
	}
	for _, b := range r.s.bets {
		st.TotalBets++
		st.TotalStaked = st.TotalStaked.Add(b.Amount)
		st.TotalPayouts = st.TotalPayouts.Add(b.Payout)
	}
	for _, g := range r.s.games {
		if g.Status == models.GameScheduled || g.Status == models.GameLive {
			st.ActiveGames++
		}
	}
	return st, nil
}
