package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists all marketplace entities. All timestamps are
// stored as RFC3339Nano text in UTC.
type SQLiteStore struct {
	db *sqlx.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id                 TEXT PRIMARY KEY,
	phone_number       TEXT NOT NULL UNIQUE,
	name               TEXT NOT NULL DEFAULT '',
	avatar_url         TEXT NOT NULL DEFAULT '',
	is_premium         INTEGER NOT NULL DEFAULT 0,
	premium_expires_at TEXT NOT NULL DEFAULT '',
	created_at         TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS auth_codes (
	id           TEXT PRIMARY KEY,
	phone_number TEXT NOT NULL,
	code         TEXT NOT NULL,
	expires_at   TEXT NOT NULL,
	verified     INTEGER NOT NULL DEFAULT 0,
	created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
	token      TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	expires_at TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS listings (
	id             TEXT PRIMARY KEY,
	seller_id      TEXT NOT NULL,
	title          TEXT NOT NULL,
	description    TEXT NOT NULL DEFAULT '',
	category       TEXT NOT NULL,
	condition      TEXT NOT NULL,
	price          INTEGER NOT NULL,
	original_price INTEGER NOT NULL DEFAULT 0,
	images         TEXT NOT NULL DEFAULT '[]',
	location       TEXT NOT NULL DEFAULT '',
	specs          TEXT,
	deal_score     INTEGER,
	risk_score     INTEGER,
	status         TEXT NOT NULL DEFAULT 'active',
	views          INTEGER NOT NULL DEFAULT 0,
	saves          INTEGER NOT NULL DEFAULT 0,
	created_at     TEXT NOT NULL,
	updated_at     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS conversations (
	id                  TEXT PRIMARY KEY,
	listing_id          TEXT NOT NULL,
	buyer_id            TEXT NOT NULL,
	seller_id           TEXT NOT NULL,
	ai_agent_active     INTEGER NOT NULL DEFAULT 1,
	needs_intervention  INTEGER NOT NULL DEFAULT 0,
	intervention_reason TEXT NOT NULL DEFAULT '',
	last_message_at     TEXT NOT NULL,
	created_at          TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id              TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL,
	sender_id       TEXT NOT NULL,
	content         TEXT NOT NULL,
	is_ai_generated INTEGER NOT NULL DEFAULT 0,
	status          TEXT NOT NULL DEFAULT 'sent',
	created_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS deal_listeners (
	id              TEXT PRIMARY KEY,
	user_id         TEXT NOT NULL,
	category        TEXT NOT NULL,
	keywords        TEXT NOT NULL DEFAULT '[]',
	max_price       INTEGER NOT NULL DEFAULT 0,
	min_deal_score  INTEGER NOT NULL DEFAULT 75,
	notify_whatsapp INTEGER NOT NULL DEFAULT 1,
	notify_email    INTEGER NOT NULL DEFAULT 0,
	active          INTEGER NOT NULL DEFAULT 1,
	created_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS saved_listings (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	listing_id TEXT NOT NULL,
	created_at TEXT NOT NULL,
	UNIQUE (user_id, listing_id)
);
`

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- helpers ---

func timeToString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339Nano, v)
	return t
}

func marshalJSON(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func newID() string { return uuid.NewString() }

// --- users ---

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	var premium int
	var premiumExpires, createdAt string
	if err := row.Scan(&u.ID, &u.PhoneNumber, &u.Name, &u.AvatarURL, &premium, &premiumExpires, &createdAt); err != nil {
		return nil, err
	}
	u.IsPremium = premium != 0
	if premiumExpires != "" {
		t := parseTime(premiumExpires)
		u.PremiumExpiresAt = &t
	}
	u.CreatedAt = parseTime(createdAt)
	return &u, nil
}

const userColumns = "id, phone_number, name, avatar_url, is_premium, premium_expires_at, created_at"

func (s *SQLiteStore) GetUser(id string) (*User, error) {
	u, err := scanUser(s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

func (s *SQLiteStore) GetUserByPhone(phoneNumber string) (*User, error) {
	u, err := scanUser(s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE phone_number = ?", phoneNumber))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

func (s *SQLiteStore) CreateUser(phoneNumber string) (*User, error) {
	u := &User{
		ID:          newID(),
		PhoneNumber: phoneNumber,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := s.db.Exec(`INSERT INTO users (id, phone_number, name, avatar_url, is_premium, premium_expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.PhoneNumber, u.Name, u.AvatarURL, boolToInt(u.IsPremium), "", timeToString(u.CreatedAt))
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *SQLiteStore) UpdateUser(u *User) error {
	premiumExpires := ""
	if u.PremiumExpiresAt != nil {
		premiumExpires = timeToString(*u.PremiumExpiresAt)
	}
	res, err := s.db.Exec(`UPDATE users SET name = ?, avatar_url = ?, is_premium = ?, premium_expires_at = ? WHERE id = ?`,
		u.Name, u.AvatarURL, boolToInt(u.IsPremium), premiumExpires, u.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- auth codes ---

func (s *SQLiteStore) CreateAuthCode(phoneNumber, code string, expiresAt time.Time) (*AuthCode, error) {
	ac := &AuthCode{
		ID:          newID(),
		PhoneNumber: phoneNumber,
		Code:        code,
		ExpiresAt:   expiresAt,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := s.db.Exec(`INSERT INTO auth_codes (id, phone_number, code, expires_at, verified, created_at)
		VALUES (?, ?, ?, ?, 0, ?)`,
		ac.ID, ac.PhoneNumber, ac.Code, timeToString(ac.ExpiresAt), timeToString(ac.CreatedAt))
	if err != nil {
		return nil, err
	}
	return ac, nil
}

// GetActiveAuthCode returns the unverified, unexpired code matching the
// phone/code pair, or ErrNotFound.
func (s *SQLiteStore) GetActiveAuthCode(phoneNumber, code string) (*AuthCode, error) {
	row := s.db.QueryRow(`SELECT id, phone_number, code, expires_at, verified, created_at
		FROM auth_codes WHERE phone_number = ? AND code = ? AND verified = 0
		ORDER BY created_at DESC LIMIT 1`, phoneNumber, code)
	var ac AuthCode
	var verified int
	var expiresAt, createdAt string
	if err := row.Scan(&ac.ID, &ac.PhoneNumber, &ac.Code, &expiresAt, &verified, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	ac.Verified = verified != 0
	ac.ExpiresAt = parseTime(expiresAt)
	ac.CreatedAt = parseTime(createdAt)
	if time.Now().After(ac.ExpiresAt) {
		return nil, ErrNotFound
	}
	return &ac, nil
}

func (s *SQLiteStore) MarkAuthCodeVerified(id string) error {
	_, err := s.db.Exec(`UPDATE auth_codes SET verified = 1 WHERE id = ?`, id)
	return err
}

// --- sessions ---

func (s *SQLiteStore) CreateSession(userID string, ttl time.Duration) (*Session, error) {
	now := time.Now().UTC()
	sess := &Session{
		Token:     newID(),
		UserID:    userID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	_, err := s.db.Exec(`INSERT INTO sessions (token, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		sess.Token, sess.UserID, timeToString(sess.ExpiresAt), timeToString(sess.CreatedAt))
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *SQLiteStore) GetSession(token string) (*Session, error) {
	row := s.db.QueryRow(`SELECT token, user_id, expires_at, created_at FROM sessions WHERE token = ?`, token)
	var sess Session
	var expiresAt, createdAt string
	if err := row.Scan(&sess.Token, &sess.UserID, &expiresAt, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	sess.ExpiresAt = parseTime(expiresAt)
	sess.CreatedAt = parseTime(createdAt)
	if time.Now().After(sess.ExpiresAt) {
		return nil, ErrNotFound
	}
	return &sess, nil
}

func (s *SQLiteStore) DeleteSession(token string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE token = ?`, token)
	return err
}

// --- listings ---

const listingColumns = `id, seller_id, title, description, category, condition, price, original_price,
	images, location, specs, deal_score, risk_score, status, views, saves, created_at, updated_at`

func scanListing(row interface{ Scan(...any) error }) (*Listing, error) {
	var l Listing
	var imagesJSON string
	var specsJSON sql.NullString
	var dealScore, riskScore sql.NullInt64
	var status, createdAt, updatedAt string
	if err := row.Scan(&l.ID, &l.SellerID, &l.Title, &l.Description, &l.Category, &l.Condition,
		&l.Price, &l.OriginalPrice, &imagesJSON, &l.Location, &specsJSON,
		&dealScore, &riskScore, &status, &l.Views, &l.Saves, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(imagesJSON), &l.Images)
	if l.Images == nil {
		l.Images = []string{}
	}
	if specsJSON.Valid && specsJSON.String != "" {
		_ = json.Unmarshal([]byte(specsJSON.String), &l.Specs)
	}
	if dealScore.Valid {
		v := int(dealScore.Int64)
		l.DealScore = &v
	}
	if riskScore.Valid {
		v := int(riskScore.Int64)
		l.RiskScore = &v
	}
	l.Status = ListingStatus(status)
	l.CreatedAt = parseTime(createdAt)
	l.UpdatedAt = parseTime(updatedAt)
	return &l, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func (s *SQLiteStore) CreateListing(l *Listing) error {
	now := time.Now().UTC()
	l.ID = newID()
	l.CreatedAt = now
	l.UpdatedAt = now
	if l.Status == "" {
		l.Status = ListingActive
	}
	if l.Images == nil {
		l.Images = []string{}
	}
	_, err := s.db.Exec(`INSERT INTO listings (`+listingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.SellerID, l.Title, l.Description, l.Category, l.Condition, l.Price, l.OriginalPrice,
		marshalJSON(l.Images), l.Location, marshalJSON(l.Specs), nullableInt(l.DealScore), nullableInt(l.RiskScore),
		string(l.Status), l.Views, l.Saves, timeToString(l.CreatedAt), timeToString(l.UpdatedAt))
	return err
}

func (s *SQLiteStore) GetListing(id string) (*Listing, error) {
	l, err := scanListing(s.db.QueryRow("SELECT "+listingColumns+" FROM listings WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return l, err
}

func (s *SQLiteStore) ListListings(filter ListingFilter) ([]Listing, error) {
	query := "SELECT " + listingColumns + " FROM listings WHERE status = ?"
	args := []any{string(ListingActive)}
	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, filter.Category)
	}
	if filter.SellerID != "" {
		query += " AND seller_id = ?"
		args = append(args, filter.SellerID)
	}
	if filter.Search != "" {
		query += " AND (lower(title) LIKE ? OR lower(description) LIKE ?)"
		needle := "%" + strings.ToLower(filter.Search) + "%"
		args = append(args, needle, needle)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := []Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *l)
	}
	return listings, rows.Err()
}

func (s *SQLiteStore) UpdateListing(l *Listing) error {
	l.UpdatedAt = time.Now().UTC()
	res, err := s.db.Exec(`UPDATE listings SET title = ?, description = ?, category = ?, condition = ?,
		price = ?, original_price = ?, images = ?, location = ?, specs = ?,
		deal_score = ?, risk_score = ?, status = ?, updated_at = ? WHERE id = ?`,
		l.Title, l.Description, l.Category, l.Condition, l.Price, l.OriginalPrice,
		marshalJSON(l.Images), l.Location, marshalJSON(l.Specs),
		nullableInt(l.DealScore), nullableInt(l.RiskScore), string(l.Status), timeToString(l.UpdatedAt), l.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteListing is a status flip, never a row delete; history stays
// reachable for existing conversations.
func (s *SQLiteStore) DeleteListing(id string) error {
	_, err := s.db.Exec(`UPDATE listings SET status = ? WHERE id = ?`, string(ListingDeleted), id)
	return err
}

func (s *SQLiteStore) IncrementViews(id string) error {
	_, err := s.db.Exec(`UPDATE listings SET views = views + 1 WHERE id = ?`, id)
	return err
}

func (s *SQLiteStore) adjustSaves(id string, delta int) error {
	_, err := s.db.Exec(`UPDATE listings SET saves = MAX(0, saves + ?) WHERE id = ?`, delta, id)
	return err
}

// --- conversations ---

const conversationColumns = `id, listing_id, buyer_id, seller_id, ai_agent_active,
	needs_intervention, intervention_reason, last_message_at, created_at`

func scanConversation(row interface{ Scan(...any) error }) (*Conversation, error) {
	var c Conversation
	var aiActive, needsIntervention int
	var lastMessageAt, createdAt string
	if err := row.Scan(&c.ID, &c.ListingID, &c.BuyerID, &c.SellerID, &aiActive,
		&needsIntervention, &c.InterventionReason, &lastMessageAt, &createdAt); err != nil {
		return nil, err
	}
	c.AIAgentActive = aiActive != 0
	c.NeedsIntervention = needsIntervention != 0
	c.LastMessageAt = parseTime(lastMessageAt)
	c.CreatedAt = parseTime(createdAt)
	return &c, nil
}

func (s *SQLiteStore) CreateConversation(c *Conversation) error {
	now := time.Now().UTC()
	c.ID = newID()
	c.CreatedAt = now
	c.LastMessageAt = now
	_, err := s.db.Exec(`INSERT INTO conversations (`+conversationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.ListingID, c.BuyerID, c.SellerID, boolToInt(c.AIAgentActive),
		boolToInt(c.NeedsIntervention), c.InterventionReason,
		timeToString(c.LastMessageAt), timeToString(c.CreatedAt))
	return err
}

func (s *SQLiteStore) GetConversation(id string) (*Conversation, error) {
	c, err := scanConversation(s.db.QueryRow("SELECT "+conversationColumns+" FROM conversations WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

func (s *SQLiteStore) ListConversationsByUser(userID string) ([]Conversation, error) {
	rows, err := s.db.Query("SELECT "+conversationColumns+
		" FROM conversations WHERE buyer_id = ? OR seller_id = ? ORDER BY last_message_at DESC",
		userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conversations := []Conversation{}
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, *c)
	}
	return conversations, rows.Err()
}

// --- messages ---

func (s *SQLiteStore) CreateMessage(m *Message) error {
	now := time.Now().UTC()
	m.ID = newID()
	m.CreatedAt = now
	if m.Status == "" {
		m.Status = "sent"
	}
	_, err := s.db.Exec(`INSERT INTO messages (id, conversation_id, sender_id, content, is_ai_generated, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.ConversationID, m.SenderID, m.Content, boolToInt(m.IsAIGenerated), m.Status, timeToString(m.CreatedAt))
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`UPDATE conversations SET last_message_at = ? WHERE id = ?`,
		timeToString(now), m.ConversationID)
	return err
}

func (s *SQLiteStore) ListMessages(conversationID string) ([]Message, error) {
	rows, err := s.db.Query(`SELECT id, conversation_id, sender_id, content, is_ai_generated, status, created_at
		FROM messages WHERE conversation_id = ? ORDER BY rowid ASC`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []Message{}
	for rows.Next() {
		var m Message
		var aiGenerated int
		var createdAt string
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &aiGenerated, &m.Status, &createdAt); err != nil {
			return nil, err
		}
		m.IsAIGenerated = aiGenerated != 0
		m.CreatedAt = parseTime(createdAt)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// --- deal listeners ---

func (s *SQLiteStore) CreateDealListener(l *DealListener) error {
	l.ID = newID()
	l.CreatedAt = time.Now().UTC()
	l.Active = true
	if l.MinDealScore <= 0 {
		l.MinDealScore = 75
	}
	if l.Keywords == nil {
		l.Keywords = []string{}
	}
	_, err := s.db.Exec(`INSERT INTO deal_listeners (id, user_id, category, keywords, max_price,
		min_deal_score, notify_whatsapp, notify_email, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?)`,
		l.ID, l.UserID, l.Category, marshalJSON(l.Keywords), l.MaxPrice,
		l.MinDealScore, boolToInt(l.NotifyWhatsApp), boolToInt(l.NotifyEmail), timeToString(l.CreatedAt))
	return err
}

func (s *SQLiteStore) ListDealListenersByUser(userID string) ([]DealListener, error) {
	rows, err := s.db.Query(`SELECT id, user_id, category, keywords, max_price, min_deal_score,
		notify_whatsapp, notify_email, active, created_at
		FROM deal_listeners WHERE user_id = ? AND active = 1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listeners := []DealListener{}
	for rows.Next() {
		var l DealListener
		var keywordsJSON string
		var whatsapp, email, active int
		var createdAt string
		if err := rows.Scan(&l.ID, &l.UserID, &l.Category, &keywordsJSON, &l.MaxPrice, &l.MinDealScore,
			&whatsapp, &email, &active, &createdAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(keywordsJSON), &l.Keywords)
		if l.Keywords == nil {
			l.Keywords = []string{}
		}
		l.NotifyWhatsApp = whatsapp != 0
		l.NotifyEmail = email != 0
		l.Active = active != 0
		l.CreatedAt = parseTime(createdAt)
		listeners = append(listeners, l)
	}
	return listeners, rows.Err()
}

// DeactivateDealListener soft-deletes; the row is kept for audit.
func (s *SQLiteStore) DeactivateDealListener(id, userID string) error {
	res, err := s.db.Exec(`UPDATE deal_listeners SET active = 0 WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- saved listings ---

func (s *SQLiteStore) SaveListing(userID, listingID string) (*SavedListing, error) {
	saved := &SavedListing{
		ID:        newID(),
		UserID:    userID,
		ListingID: listingID,
		CreatedAt: time.Now().UTC(),
	}
	res, err := s.db.Exec(`INSERT OR IGNORE INTO saved_listings (id, user_id, listing_id, created_at)
		VALUES (?, ?, ?, ?)`,
		saved.ID, saved.UserID, saved.ListingID, timeToString(saved.CreatedAt))
	if err != nil {
		return nil, err
	}
	// Saving twice is a no-op; the counter only moves on a fresh row.
	if n, _ := res.RowsAffected(); n > 0 {
		if err := s.adjustSaves(listingID, 1); err != nil {
			return nil, err
		}
	}
	return saved, nil
}

func (s *SQLiteStore) UnsaveListing(userID, listingID string) error {
	res, err := s.db.Exec(`DELETE FROM saved_listings WHERE user_id = ? AND listing_id = ?`, userID, listingID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}
	return s.adjustSaves(listingID, -1)
}

func (s *SQLiteStore) IsListingSaved(userID, listingID string) (bool, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(1) FROM saved_listings WHERE user_id = ? AND listing_id = ?`,
		userID, listingID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *SQLiteStore) ListSavedListings(userID string) ([]Listing, error) {
	rows, err := s.db.Query(`SELECT l.id, l.seller_id, l.title, l.description, l.category, l.condition,
		l.price, l.original_price, l.images, l.location, l.specs, l.deal_score, l.risk_score,
		l.status, l.views, l.saves, l.created_at, l.updated_at
		FROM saved_listings s
		INNER JOIN listings l ON l.id = s.listing_id
		WHERE s.user_id = ?
		ORDER BY s.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := []Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *l)
	}
	return listings, rows.Err()
}
