package backend

import (
	"encoding/json"
	"strings"

	"github.com/lborres/careerguide/core"
)

func conversationKey(account *Account, counselorID string) string {
	return account.ID + "/" + counselorID
}

// Messages returns the account's conversation with a counselor, oldest first.
func (b *Backend) Messages(account *Account, counselorID string) ([]core.Message, error) {
	if _, err := b.Counselor(counselorID); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	msgs := b.messages[conversationKey(account, counselorID)]
	out := make([]core.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (b *Backend) SendMessage(account *Account, req core.SendMessageRequest) (*core.Message, error) {
	if strings.TrimSpace(req.CounselorID) == "" {
		return nil, core.ErrCounselorIDRequired
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, core.ErrMessageRequired
	}
	if _, err := b.Counselor(req.CounselorID); err != nil {
		return nil, err
	}

	id, err := b.ids.Generate(0)
	if err != nil {
		return nil, err
	}
	msg := core.Message{
		ID:          id,
		CounselorID: req.CounselorID,
		Sender:      account.ID,
		Body:        strings.TrimSpace(req.Message),
		SentAt:      b.clock().UnixMilli(),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	key := conversationKey(account, req.CounselorID)
	b.messages[key] = append(b.messages[key], msg)
	return &msg, nil
}

// Resume returns the stored resume, or nil when none was saved.
func (b *Backend) Resume(account *Account) json.RawMessage {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.resumes[account.ID]
}

func (b *Backend) SaveResume(account *Account, data json.RawMessage) error {
	if !json.Valid(data) {
		return ErrInvalidDocument
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resumes[account.ID] = append(json.RawMessage(nil), data...)
	return nil
}

func (b *Backend) LearningJourney(account *Account) json.RawMessage {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.journeys[account.ID]
}

func (b *Backend) SaveLearningJourney(account *Account, data json.RawMessage) error {
	if !json.Valid(data) {
		return ErrInvalidDocument
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.journeys[account.ID] = append(json.RawMessage(nil), data...)
	return nil
}
