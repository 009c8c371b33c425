package notify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/leonardotrapani/scribebot/internal/testutil"
)

func TestMessageSink_SendThenEdit(t *testing.T) {
	m := testutil.NewFakeMessenger()
	s := NewMessageSink(m, 42, 7, "Processing data: {percent}%")
	ctx := context.Background()

	for _, p := range []int{0, 33, 33, 67, 100} {
		if err := s.Update(ctx, p); err != nil {
			t.Fatalf("Update(%d) error = %v", p, err)
		}
	}

	if len(m.Sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(m.Sent))
	}
	if m.Sent[0].Text != "Processing data: 0%" || m.Sent[0].ReplyTo != 7 {
		t.Errorf("first message = %+v", m.Sent[0])
	}
	want := []string{"Processing data: 33%", "Processing data: 67%", "Processing data: 100%"}
	if len(m.Edits) != len(want) {
		t.Fatalf("edits = %d, want %d (duplicate percent must be skipped)", len(m.Edits), len(want))
	}
	for i, e := range m.Edits {
		if e.Text != want[i] {
			t.Errorf("edit %d = %q, want %q", i, e.Text, want[i])
		}
		if e.Ref != m.Sent[0].Ref {
			t.Errorf("edit %d targets %+v, want %+v", i, e.Ref, m.Sent[0].Ref)
		}
	}

	if err := s.Complete(ctx); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if len(m.Deleted) != 1 || m.Deleted[0] != m.Sent[0].Ref {
		t.Errorf("deleted = %+v, want progress message", m.Deleted)
	}

	// second completion has nothing left to delete
	if err := s.Complete(ctx); err != nil {
		t.Fatalf("second Complete() error = %v", err)
	}
	if len(m.Deleted) != 1 {
		t.Errorf("deleted %d times, want 1", len(m.Deleted))
	}
}

func TestMessageSink_FailWithoutUpdate(t *testing.T) {
	m := testutil.NewFakeMessenger()
	s := NewMessageSink(m, 1, 0, "{percent}")
	if err := s.Fail(context.Background(), errors.New("boom")); err != nil {
		t.Fatalf("Fail() error = %v", err)
	}
	if len(m.Deleted) != 0 {
		t.Errorf("nothing was sent, nothing should be deleted")
	}
}

func TestMessageSink_Errors(t *testing.T) {
	ctx := context.Background()

	m := testutil.NewFakeMessenger()
	m.SendErr = errors.New("flood wait")
	s := NewMessageSink(m, 1, 0, "{percent}")
	if err := s.Update(ctx, 0); err == nil || !strings.Contains(err.Error(), "send progress") {
		t.Errorf("Update() error = %v, want send progress error", err)
	}

	m = testutil.NewFakeMessenger()
	m.EditErr = errors.New("not modified")
	s = NewMessageSink(m, 1, 0, "{percent}")
	_ = s.Update(ctx, 0)
	if err := s.Update(ctx, 50); err == nil || !strings.Contains(err.Error(), "edit progress") {
		t.Errorf("Update() error = %v, want edit progress error", err)
	}

	m.DeleteErr = errors.New("gone")
	if err := s.Complete(ctx); err == nil || !strings.Contains(err.Error(), "delete progress") {
		t.Errorf("Complete() error = %v, want delete progress error", err)
	}
}

func TestMulti(t *testing.T) {
	a := &testutil.RecordingSink{}
	b := &testutil.RecordingSink{UpdateErr: errors.New("b failed")}
	m := Multi{a, b, Nop{}}
	ctx := context.Background()

	if err := m.Update(ctx, 10); err == nil {
		t.Error("expected joined error from b")
	}
	if err := m.Complete(ctx); err != nil {
		t.Errorf("Complete() error = %v", err)
	}
	cause := errors.New("x")
	if err := m.Fail(ctx, cause); err != nil {
		t.Errorf("Fail() error = %v", err)
	}

	for name, s := range map[string]*testutil.RecordingSink{"a": a, "b": b} {
		if len(s.Updates) != 1 || s.Updates[0] != 10 {
			t.Errorf("%s updates = %v", name, s.Updates)
		}
		if s.Completed != 1 {
			t.Errorf("%s completed = %d", name, s.Completed)
		}
		if len(s.Failed) != 1 || s.Failed[0] != cause {
			t.Errorf("%s failed = %v", name, s.Failed)
		}
	}
}

func TestTerminal(t *testing.T) {
	var buf bytes.Buffer
	term := Terminal{Out: &buf}
	ctx := context.Background()

	if err := term.Update(ctx, 50); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !strings.Contains(buf.String(), " 50%") {
		t.Errorf("output %q missing percent", buf.String())
	}
	if err := term.Complete(ctx); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if !strings.Contains(buf.String(), "Done") {
		t.Errorf("output %q missing Done", buf.String())
	}

	buf.Reset()
	_ = term.Fail(ctx, errors.New("decode failed"))
	if !strings.Contains(buf.String(), "decode failed") {
		t.Errorf("output %q missing error", buf.String())
	}
}

func TestLogSinkNeverFails(t *testing.T) {
	l := Log{RequestID: "r1", ChatID: 5}
	ctx := context.Background()
	if l.Update(ctx, 1) != nil || l.Complete(ctx) != nil || l.Fail(ctx, errors.New("x")) != nil {
		t.Error("log sink must not return errors")
	}
}
