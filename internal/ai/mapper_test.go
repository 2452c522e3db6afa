package ai_test

import (
	"context"
	"errors"
	"testing"

	"smetaflow/internal/ai"
	"smetaflow/internal/cache"
)

type fakeChatter struct {
	reply string
	err   error
	calls int
}

func (c *fakeChatter) Chat(_ context.Context, _ []ai.Message, _ ai.Options) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return c.reply, nil
}

var testHeaders = map[int]string{1: "Колонка А", 2: "Колонка Б", 3: "Колонка В"}

func TestSuggestParsesReply(t *testing.T) {
	chat := &fakeChatter{reply: "```json\n{\"item_name\": 1, \"quantity\": 2, \"unknown_field\": 0}\n```"}
	s := ai.NewMappingSuggester(chat, nil)

	got, err := s.Suggest(context.Background(), testHeaders, nil)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if got["item_name"] != 1 || got["quantity"] != 2 {
		t.Fatalf("got=%v, want item_name=1 quantity=2", got)
	}
	if _, ok := got["unknown_field"]; ok {
		t.Fatalf("неизвестное поле не отфильтровано: %v", got)
	}
}

func TestSuggestNilChatter(t *testing.T) {
	s := ai.NewMappingSuggester(nil, nil)
	got, err := s.Suggest(context.Background(), testHeaders, nil)
	if got != nil || err != nil {
		t.Fatalf("got=%v err=%v, want nil/nil при отключённых подсказках", got, err)
	}
}

func TestSuggestChatError(t *testing.T) {
	chat := &fakeChatter{err: errors.New("timeout")}
	s := ai.NewMappingSuggester(chat, nil)

	if _, err := s.Suggest(context.Background(), testHeaders, nil); err == nil {
		t.Fatalf("Suggest не вернул ошибку коллаборатора")
	}
}

func TestSuggestGarbageReply(t *testing.T) {
	chat := &fakeChatter{reply: "извините, не могу определить колонки"}
	s := ai.NewMappingSuggester(chat, nil)

	if _, err := s.Suggest(context.Background(), testHeaders, nil); err == nil {
		t.Fatalf("Suggest принял ответ без JSON")
	}
}

func TestSuggestOnlyUnknownFields(t *testing.T) {
	chat := &fakeChatter{reply: `{"column": 1, "another": 2}`}
	s := ai.NewMappingSuggester(chat, nil)

	if _, err := s.Suggest(context.Background(), testHeaders, nil); err == nil {
		t.Fatalf("Suggest принял ответ без известных полей")
	}
}

func TestSuggestCaching(t *testing.T) {
	chat := &fakeChatter{reply: `{"item_name": 1, "quantity": 2, "unit_price": 3}`}
	s := ai.NewMappingSuggester(chat, cache.NewTTLCache())

	samples := [][]string{{"Работа", "10", "100"}}
	first, err := s.Suggest(context.Background(), testHeaders, samples)
	if err != nil {
		t.Fatalf("Suggest #1: %v", err)
	}
	second, err := s.Suggest(context.Background(), testHeaders, samples)
	if err != nil {
		t.Fatalf("Suggest #2: %v", err)
	}
	if chat.calls != 1 {
		t.Fatalf("calls=%d, want 1 (повтор из кэша)", chat.calls)
	}
	if len(first) != len(second) || second["item_name"] != 1 {
		t.Fatalf("кэшированный ответ отличается: %v vs %v", first, second)
	}
}
