package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/electrokart/electrokart_api/internal/matching"
	"github.com/electrokart/electrokart_api/internal/models"
	"github.com/electrokart/electrokart_api/internal/utils"
)

func chatCatalog() *fakeProducts {
	laptop := product(1, "Pavilion Gaming", "HP", "Laptops", 75000)
	laptop.Description = "gaming laptop with rtx graphics"
	laptop.Rating = 4
	phone := product(2, "Galaxy S23", "Samsung", "Smartphones", 70000)
	phone.Description = "flagship phone"
	phone.Rating = 4
	mouse := product(3, "Basic Mouse", "", "Accessories", 500)
	mouse.Rating = 3
	return newFakeProducts(laptop, phone, mouse)
}

func newTestChatbot(t *testing.T, store *fakeProducts) *ChatbotService {
	t.Helper()
	kb := NewKnowledgeBase(store)
	_, err := kb.Refresh(context.Background())
	require.NoError(t, err)
	return NewChatbotService(store, kb, NewConversationStore())
}

func TestChat_GamingLaptopUnderBudget(t *testing.T) {
	svc := newTestChatbot(t, chatCatalog())

	res, err := svc.Chat(context.Background(), "gaming laptop under 80000", "u1")
	require.NoError(t, err)

	assert.Equal(t, matching.IntentPriceInquiry, res.Intent)
	require.NotNil(t, res.Entities.PriceRange)
	assert.Equal(t, models.PriceAtMost, res.Entities.PriceRange.Kind)
	require.Len(t, res.Recommendations, 3)
	assert.Equal(t, 1, res.Recommendations[0].ID)
	assert.Equal(t, 140.0, res.Recommendations[0].RelevanceScore)
	assert.Equal(t, 2, res.Recommendations[1].ID)
	assert.Equal(t, 3, res.Recommendations[2].ID)
	assert.Equal(t, "Here are products in your price range:", res.Response)

	history, err := svc.History("u1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, res.Response, history[0].BotResponse)
}

func TestChat_MissingMessage(t *testing.T) {
	svc := newTestChatbot(t, chatCatalog())

	_, err := svc.Chat(context.Background(), "   ", "u1")
	assert.ErrorIs(t, err, utils.ErrMissingMessage)
}

func TestChat_Intents(t *testing.T) {
	tests := []struct {
		message  string
		intent   matching.Intent
		response string
		ids      []int
	}{
		{
			message:  "hello there",
			intent:   matching.IntentGreeting,
			response: "Hello! I'm your AI shopping assistant. How can I help you find the perfect products today?",
			ids:      []int{1, 2, 3},
		},
		{
			message:  "find samsung",
			intent:   matching.IntentProductSearch,
			response: `I found 1 products that match your search for "find samsung". Here are my top recommendations:`,
			ids:      []int{2},
		},
		{
			message:  "search for a gift",
			intent:   matching.IntentProductSearch,
			response: `I couldn't find products matching "search for a gift". Could you try different keywords or be more specific?`,
		},
		{
			message:  "show laptops",
			intent:   matching.IntentCategoryBrowse,
			response: "Here are some great products in the laptop category:",
			ids:      []int{1},
		},
		{
			message:  "compare phone models",
			intent:   matching.IntentComparison,
			response: "Here are products you can compare:",
			ids:      []int{2},
		},
		{
			message:  "i could use some support",
			intent:   matching.IntentHelp,
			response: helpResponse,
			ids:      []int{1, 2, 3},
		},
		{
			message:  "prices between 90000 and 100000",
			intent:   matching.IntentPriceInquiry,
			response: "I couldn't find products in that price range. Would you like to see products in a different price range?",
		},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			svc := newTestChatbot(t, chatCatalog())

			res, err := svc.Chat(context.Background(), tt.message, "")
			require.NoError(t, err)
			assert.Equal(t, tt.intent, res.Intent)
			assert.Equal(t, tt.response, res.Response)

			var got []int
			for _, sp := range res.Recommendations {
				got = append(got, sp.ID)
			}
			assert.ElementsMatch(t, tt.ids, got)
		})
	}
}

func TestChat_NoEntitiesSkipsCatalog(t *testing.T) {
	store := chatCatalog()
	svc := newTestChatbot(t, store)
	before := store.findCount()

	res, err := svc.Chat(context.Background(), "search for a gift", "")
	require.NoError(t, err)
	assert.Empty(t, res.Recommendations)
	assert.NotNil(t, res.Recommendations)
	assert.Equal(t, before, store.findCount())
}

func TestChat_CatalogFailureIsNotFatal(t *testing.T) {
	store := chatCatalog()
	svc := newTestChatbot(t, store)
	store.err = errors.New("connection refused")

	res, err := svc.Chat(context.Background(), "hello", "u1")
	require.NoError(t, err)
	assert.Empty(t, res.Recommendations)
	assert.Equal(t, ChatErrorMessage, res.Message)
	assert.Equal(t, matching.IntentGreeting, res.Intent)
}

func TestChat_RecommendsAtMostFive(t *testing.T) {
	var items []models.Product
	for i := 1; i <= 8; i++ {
		items = append(items, product(i, fmt.Sprintf("Phone %d", i), "Acme", "Smartphones", 100))
	}
	svc := newTestChatbot(t, newFakeProducts(items...))

	res, err := svc.Chat(context.Background(), "show me acme", "")
	require.NoError(t, err)
	assert.Len(t, res.Recommendations, matching.ChatResultsLimit)
}

func TestChat_HistoryWindowAndClear(t *testing.T) {
	svc := newTestChatbot(t, chatCatalog())
	ctx := context.Background()

	for i := 1; i <= 12; i++ {
		_, err := svc.Chat(ctx, fmt.Sprintf("hello %d", i), "u1")
		require.NoError(t, err)
	}
	_, err := svc.Chat(ctx, "hello", "u2")
	require.NoError(t, err)

	history, err := svc.History("u1")
	require.NoError(t, err)
	require.Len(t, history, HistoryWindow)
	assert.Equal(t, "hello 3", history[0].UserMessage)
	assert.Equal(t, "hello 12", history[9].UserMessage)

	svc.ClearHistory("u1")
	svc.ClearHistory("u1")
	history, err = svc.History("u1")
	require.NoError(t, err)
	assert.Empty(t, history)

	other, _ := svc.History("u2")
	assert.Len(t, other, 1)

	svc.ClearHistory("")
	other, _ = svc.History("u2")
	assert.Empty(t, other)
}

func TestChat_HistoryNeedsUser(t *testing.T) {
	svc := newTestChatbot(t, chatCatalog())

	_, err := svc.History("")
	assert.ErrorIs(t, err, utils.ErrMissingUserID)
}

func TestChat_SuggestionsAreACopy(t *testing.T) {
	svc := newTestChatbot(t, chatCatalog())

	s := svc.Suggestions()
	require.NotEmpty(t, s)
	s[0] = "changed"
	assert.NotEqual(t, "changed", svc.Suggestions()[0])
}
