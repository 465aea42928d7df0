package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/electrokart/electrokart_api/internal/catalog"
	"github.com/electrokart/electrokart_api/internal/matching"
	"github.com/electrokart/electrokart_api/internal/metrics"
	"github.com/electrokart/electrokart_api/internal/models"
	"github.com/electrokart/electrokart_api/internal/utils"
)

// ChatErrorMessage is returned alongside an empty recommendation list when
// the catalog could not be queried.
const ChatErrorMessage = "Sorry, I encountered an error while processing your request."

const generalRecommendationLimit = 10

const helpResponse = "I can help you with:\n" +
	"• Finding products by name, brand, or category\n" +
	"• Searching by price range\n" +
	"• Comparing products\n" +
	"• Getting product recommendations\n" +
	"• Answering questions about products\n\n" +
	"What would you like to do?"

// ChatEntities are the mentions extracted from a chat message.
type ChatEntities struct {
	Products   []int                   `json:"products"`
	Categories []string                `json:"categories"`
	PriceRange *models.PriceConstraint `json:"priceRange"`
}

// ChatResult is the answer to one chat message.
type ChatResult struct {
	Response        string                 `json:"response"`
	Recommendations []models.ScoredProduct `json:"recommendations"`
	Intent          matching.Intent        `json:"intent"`
	Confidence      float64                `json:"confidence"`
	Entities        ChatEntities           `json:"entities"`
	Message         string                 `json:"message,omitempty"`
}

// ChatbotService answers free-text shopping questions with ranked products.
type ChatbotService struct {
	products ProductStore
	kb       *KnowledgeBase
	history  *ConversationStore
	now      func() time.Time
}

// NewChatbotService constructs a ChatbotService.
func NewChatbotService(products ProductStore, kb *KnowledgeBase, history *ConversationStore) *ChatbotService {
	return &ChatbotService{products: products, kb: kb, history: history, now: time.Now}
}

// Chat classifies message, recommends up to five products and, when userID
// is set, records the turn. A catalog failure is not returned as an error:
// the result carries no recommendations and Message is set instead.
func (s *ChatbotService) Chat(ctx context.Context, message, userID string) (*ChatResult, error) {
	if strings.TrimSpace(message) == "" {
		return nil, utils.ErrMissingMessage
	}

	intent, confidence := matching.DetectIntent(message)
	entities := ChatEntities{
		Products:   s.kb.Mentions(message),
		Categories: matching.ExtractCategories(message),
		PriceRange: matching.ExtractPrice(message),
	}
	metrics.ChatIntents.WithLabelValues(string(intent)).Inc()

	result := &ChatResult{
		Intent:          intent,
		Confidence:      confidence,
		Entities:        entities,
		Recommendations: []models.ScoredProduct{},
	}

	candidates, err := s.candidates(ctx, intent, entities)
	if err != nil {
		metrics.ChatFailures.Inc()
		log.Error().Err(err).Str("intent", string(intent)).Str("user_id", userID).Msg("Failed to load chat recommendations")
		result.Message = ChatErrorMessage
	} else {
		result.Recommendations = matching.RankChat(candidates, message, entities.PriceRange, matching.ChatResultsLimit)
	}
	result.Response = respond(intent, message, entities, len(result.Recommendations))

	if userID != "" {
		s.history.Append(models.ConversationEntry{
			UserID:      userID,
			UserMessage: message,
			BotResponse: result.Response,
			Products:    result.Recommendations,
			Timestamp:   s.now(),
		})
	}

	log.Debug().
		Str("intent", string(intent)).
		Float64("confidence", confidence).
		Int("recommendations", len(result.Recommendations)).
		Msg("Chat answered")
	return result, nil
}

// candidates loads the products an intent draws recommendations from.
func (s *ChatbotService) candidates(ctx context.Context, intent matching.Intent, e ChatEntities) ([]models.Product, error) {
	var q catalog.Query
	switch intent {
	case matching.IntentProductSearch:
		if len(e.Products) > 0 {
			q.Filter = catalog.IDIn{IDs: e.Products}
		} else {
			q.Filter = catalog.BuildKeywordFilter(e.Categories)
		}
	case matching.IntentPriceInquiry:
		q.Filter = catalog.All
		if e.PriceRange != nil {
			q.Filter = catalog.BuildPriceFilter(*e.PriceRange)
		}
	case matching.IntentCategoryBrowse, matching.IntentComparison:
		q.Filter = categoryMentionFilter(e.Categories)
	default:
		q = catalog.Query{Filter: catalog.All, Order: catalog.OrderTopRated, Limit: generalRecommendationLimit}
	}
	if q.Filter == catalog.None {
		return nil, nil
	}
	return s.products.Find(ctx, q)
}

// categoryMentionFilter matches products whose name or category name
// contains any mentioned category keyword.
func categoryMentionFilter(categories []string) catalog.Filter {
	if len(categories) == 0 {
		return catalog.None
	}
	return catalog.Contains{Fields: []catalog.Field{catalog.FieldName, catalog.FieldCategory}, Terms: categories}
}

func respond(intent matching.Intent, message string, e ChatEntities, found int) string {
	switch intent {
	case matching.IntentGreeting:
		return "Hello! I'm your AI shopping assistant. How can I help you find the perfect products today?"
	case matching.IntentProductSearch:
		if found > 0 {
			return fmt.Sprintf("I found %d products that match your search for \"%s\". Here are my top recommendations:", found, message)
		}
		return fmt.Sprintf("I couldn't find products matching \"%s\". Could you try different keywords or be more specific?", message)
	case matching.IntentPriceInquiry:
		if found > 0 {
			return "Here are products in your price range:"
		}
		return "I couldn't find products in that price range. Would you like to see products in a different price range?"
	case matching.IntentCategoryBrowse:
		return fmt.Sprintf("Here are some great products in the %s category:", strings.Join(e.Categories, ", "))
	case matching.IntentComparison:
		return "Here are products you can compare:"
	case matching.IntentHelp:
		return helpResponse
	}
	return fmt.Sprintf("I understand you're looking for \"%s\". Let me help you find the best products!", message)
}

// History returns the user's last HistoryWindow turns.
func (s *ChatbotService) History(userID string) ([]models.ConversationEntry, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, utils.ErrMissingUserID
	}
	return s.history.Recent(userID, HistoryWindow), nil
}

// ClearHistory forgets one user's turns, or everyone's when userID is empty.
func (s *ChatbotService) ClearHistory(userID string) {
	if userID == "" {
		n := s.history.ClearAll()
		log.Info().Int("users", n).Msg("Cleared all conversation history")
		return
	}
	s.history.Clear(userID)
}

// Suggestions returns the fixed prompts offered to chat users.
func (s *ChatbotService) Suggestions() []string {
	return append([]string(nil), matching.ChatSuggestions...)
}
