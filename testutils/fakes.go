package testutils

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"institute/services/notification"
)

// Sent is one message captured by FakeSender.
type Sent struct {
	To      string
	Message notification.Message
}

// FakeSender records messages and fails for the addresses listed in FailFor.
type FakeSender struct {
	mu      sync.Mutex
	FailFor map[string]bool
	Sent    []Sent
}

func NewFakeSender(failFor ...string) *FakeSender {
	s := &FakeSender{FailFor: map[string]bool{}}
	for _, addr := range failFor {
		s.FailFor[addr] = true
	}
	return s
}

func (s *FakeSender) Send(_ context.Context, to string, msg notification.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailFor[to] {
		return errors.New("mailbox unavailable")
	}
	s.Sent = append(s.Sent, Sent{To: to, Message: msg})
	return nil
}

func (s *FakeSender) Messages() []Sent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Sent, len(s.Sent))
	copy(out, s.Sent)
	return out
}

// FakeObjectStore keeps uploads in memory and hands out sequential URLs.
type FakeObjectStore struct {
	mu      sync.Mutex
	Err     error
	Objects map[string][]byte
	n       int
}

func NewFakeObjectStore() *FakeObjectStore {
	return &FakeObjectStore{Objects: map[string][]byte{}}
}

func (s *FakeObjectStore) Store(_ context.Context, data []byte, nameHint string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	s.n++
	url := fmt.Sprintf("https://files.test/%d/%s", s.n, nameHint)
	s.Objects[url] = data
	return url, nil
}
