package cancellation

import (
	"context"
	"reflect"
	"testing"

	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/domain"
)

func TestKey(t *testing.T) {
	if got := Key("01-24", "A", 5); got != "01-24-A-5" {
		t.Errorf("Key = %q", got)
	}
	if got := Key(domain.UnknownPeriod, domain.DefaultSeries, 12); got != "Desconhecido-Única-12" {
		t.Errorf("Key = %q", got)
	}
}

func TestLedgerMarkUnmark(t *testing.T) {
	l := NewLedger()
	key := Key("01-24", "A", 5)

	if l.IsMarked(key) {
		t.Fatal("ledger novo não deveria ter marcas")
	}
	if l.Status(key) != domain.StatusMissing {
		t.Errorf("Status = %s, esperado FALTANTE", l.Status(key))
	}

	l.Mark(key)
	l.Mark(key)
	if !l.IsMarked(key) || l.Status(key) != domain.StatusCancelled {
		t.Errorf("chave deveria estar marcada como CANC/INUT")
	}
	if got := l.Keys(); !reflect.DeepEqual(got, []string{key}) {
		t.Errorf("Keys = %v", got)
	}

	l.Unmark(key)
	if l.IsMarked(key) {
		t.Error("Unmark deveria remover a marca")
	}
	// desmarcar o que não existe é inofensivo
	l.Unmark("01-24-B-9")
}

func TestLedgerLoad(t *testing.T) {
	l := NewLedger()
	l.Mark("02-24-1-3")
	l.Load([]string{"01-24-A-5", "02-24-1-3"})
	want := []string{"01-24-A-5", "02-24-1-3"}
	if got := l.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys = %v, esperado %v", got, want)
	}
}

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	org := "12.345.678/0001-99"

	if err := repo.Save(ctx, org, "01-24-A-5"); err != nil {
		t.Fatal(err)
	}
	if err := repo.Save(ctx, org, "01-24-A-3"); err != nil {
		t.Fatal(err)
	}
	if err := repo.Save(ctx, "outra", "01-24-A-4"); err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete(ctx, org, "01-24-A-5"); err != nil {
		t.Fatal(err)
	}

	keys, err := repo.Load(ctx, org)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(keys, []string{"01-24-A-3"}) {
		t.Errorf("Load = %v", keys)
	}
}

func TestDocID(t *testing.T) {
	if got := docID("12.345.678/0001-99", "01-24-A/B-5"); got != "12345678000199_01-24-A_B-5" {
		t.Errorf("docID = %q", got)
	}
}
