package core

import (
	"encoding/json"
	"maps"

	"github.com/shopspring/decimal"
)

// UserRecord is the opaque profile returned by the backend for either a
// student or a counselor.
type UserRecord map[string]any

// Clone returns a shallow copy. Nil stays nil.
func (u UserRecord) Clone() UserRecord {
	if u == nil {
		return nil
	}
	return maps.Clone(u)
}

// Merge returns a copy of u with every field of patch laid over it.
func (u UserRecord) Merge(patch UserRecord) UserRecord {
	out := make(UserRecord, len(u)+len(patch))
	maps.Copy(out, u)
	maps.Copy(out, patch)
	return out
}

// Session is the snapshot of the authentication state handed to callers.
//
// IsAuthenticated is true exactly when both Token and User are set.
type Session struct {
	Token           string     `json:"token,omitempty"`
	User            UserRecord `json:"user,omitempty"`
	Role            Role       `json:"role,omitempty"`
	Loading         bool       `json:"loading"`
	IsAuthenticated bool       `json:"isAuthenticated"`
}

// Result is the only shape returned by the session controller's mutating calls.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func OK(message string) Result { return Result{Success: true, Message: message} }

func Fail(message string) Result { return Result{Success: false, Message: message} }

// LoginRequest is the credential body sent to login.php.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	LoginAs  string `json:"loginAs"`
}

// Envelope carries the discriminant shared by every backend response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// AuthResponse is returned by login.php and profile.php. Students arrive
// under "user", counselors under "counselor".
type AuthResponse struct {
	Envelope
	Token     string     `json:"token,omitempty"`
	User      UserRecord `json:"user,omitempty"`
	Counselor UserRecord `json:"counselor,omitempty"`
	Role      string     `json:"role,omitempty"`
}

// Profile returns whichever profile field the backend populated.
func (r *AuthResponse) Profile() UserRecord {
	if r.User != nil {
		return r.User
	}
	return r.Counselor
}

// Counselor is one entry of the counselor directory.
type Counselor struct {
	ID           int             `json:"id"`
	Name         string          `json:"name"`
	Specialty    string          `json:"specialty"`
	Experience   string          `json:"experience"`
	Rating       float64         `json:"rating"`
	Reviews      int             `json:"reviews"`
	Availability string          `json:"availability"`
	Avatar       string          `json:"avatar"`
	Description  string          `json:"description"`
	Languages    []string        `json:"languages"`
	HourlyRate   decimal.Decimal `json:"hourlyRate"`
}

// Price renders the hourly rate the way the directory displays it.
func (c Counselor) Price() string {
	return "$" + c.HourlyRate.StringFixedBank(0) + "/hour"
}

type CounselorsResponse struct {
	Envelope
	Counselors []Counselor `json:"counselors"`
}

type CounselorResponse struct {
	Envelope
	Counselor *Counselor `json:"counselor,omitempty"`
}

// Message is a single entry of a student/counselor conversation.
type Message struct {
	ID          string `json:"id"`
	CounselorID string `json:"counselor_id"`
	Sender      string `json:"sender"`
	Body        string `json:"message"`
	SentAt      int64  `json:"sent_at"`
}

type SendMessageRequest struct {
	CounselorID string `json:"counselor_id"`
	Message     string `json:"message"`
}

type MessagesResponse struct {
	Envelope
	Messages []Message `json:"messages"`
}

type SendMessageResponse struct {
	Envelope
	Data *Message `json:"data,omitempty"`
}

// DocumentResponse wraps payloads the client stores but never interprets,
// such as the resume and the learning journey.
type DocumentResponse struct {
	Envelope
	Data json.RawMessage `json:"data,omitempty"`
}

// Settings are the persisted user preferences.
type Settings struct {
	NotificationsEnabled bool   `json:"notificationsEnabled"`
	EmailNotifications   bool   `json:"emailNotifications"`
	Theme                string `json:"theme"`
	Language             string `json:"language"`
}

func DefaultSettings() Settings {
	return Settings{
		NotificationsEnabled: true,
		EmailNotifications:   true,
		Theme:                "light",
		Language:             "en",
	}
}
