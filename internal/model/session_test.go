package model_test

import (
	"testing"

	"smetaflow/internal/model"
)

func TestStatusTransitions(t *testing.T) {
	order := []model.SessionStatus{
		model.StatusDetecting, model.StatusParsing, model.StatusProcessing,
		model.StatusEnriching, model.StatusCompleted,
	}

	s := model.NewImportSession(1, 1, "смета.xlsx", "xlsx")
	if s.Status != model.StatusUploading {
		t.Fatalf("Status=%s, want uploading", s.Status)
	}
	for _, next := range order {
		if !s.Transition(next) {
			t.Fatalf("переход %s -> %s отклонён", s.Status, next)
		}
	}
}

func TestStatusSkipRejected(t *testing.T) {
	s := model.NewImportSession(1, 1, "смета.xlsx", "xlsx")
	if s.Transition(model.StatusParsing) {
		t.Fatalf("переход uploading -> parsing пропустил детекцию")
	}
	if s.Status != model.StatusUploading {
		t.Fatalf("Status=%s после отклонённого перехода", s.Status)
	}
}

func TestStatusFailedReachable(t *testing.T) {
	for _, from := range []model.SessionStatus{
		model.StatusUploading, model.StatusDetecting, model.StatusParsing,
		model.StatusProcessing, model.StatusEnriching,
	} {
		if !model.CanTransition(from, model.StatusFailed) {
			t.Fatalf("failed недостижим из %s", from)
		}
	}
	if model.CanTransition(model.StatusCompleted, model.StatusFailed) {
		t.Fatalf("завершённая сессия перешла в failed")
	}
}

func TestParentPath(t *testing.T) {
	cases := []struct{ in, want string }{
		{"1.2.3", "1.2"},
		{"1.2", "1"},
		{"1", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := model.ParentPath(c.in); got != c.want {
			t.Fatalf("ParentPath(%q)=%q, want %q", c.in, got, c.want)
		}
	}
}

func TestClearAmounts(t *testing.T) {
	q, p := 10.0, 100.0
	r := model.MappedRow{Quantity: &q, UnitPrice: &p}
	if !r.HasAmounts() {
		t.Fatalf("HasAmounts=false при заполненных полях")
	}
	r.ClearAmounts()
	if r.HasAmounts() || r.Quantity != nil || r.UnitPrice != nil {
		t.Fatalf("ClearAmounts не очистил поля: %+v", r)
	}
}
