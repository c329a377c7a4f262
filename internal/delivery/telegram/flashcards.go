package telegram

import (
	"context"
	"errors"
	"strings"

	"github.com/aliskhannn/pmp-prep-bot/internal/domain/entities"
	"github.com/aliskhannn/pmp-prep-bot/internal/repository"
	"github.com/aliskhannn/pmp-prep-bot/internal/service"
)

// parseCardsArgs reads "/cards [mode] [domain]" in any order.
// The mode defaults to due cards, the domain to all domains.
func parseCardsArgs(args string) (service.StudyMode, entities.DomainID) {
	mode := service.StudyDue
	var domain entities.DomainID

	for _, f := range strings.Fields(args) {
		if m, ok := service.ParseStudyMode(f); ok {
			mode = m
			continue
		}
		if d := decodeDomain(f); d != "" {
			domain = d
		}
	}
	return mode, domain
}

func (h *Handler) handleCards(userID int64, args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		mode, domain := parseCardsArgs(args)
		sc, err := h.nextCardScreen(ctx, userID, mode, domain)
		if err != nil {
			return err
		}
		return h.sendScreen(chatID, sc)
	}
}

func (h *Handler) handleCardCallback(ctx context.Context, userID int64, data callbackData) (screen, error) {
	mode, ok := service.ParseStudyMode(data.param(1))
	if !ok {
		mode = service.StudyDue
	}
	domain := decodeDomain(data.param(2))
	cardID := data.param(3)

	switch data.param(0) {
	case cardShow:
		return h.nextCardScreen(ctx, userID, mode, domain)
	case cardFlip:
		return h.cardScreen(ctx, userID, cardID, mode, domain, true)
	case cardRate:
		rating := entities.Rating(data.param(4))
		outcome, err := h.Flashcards.Review(ctx, userID, cardID, rating)
		if errors.Is(err, repository.ErrFlashcardNotFound) {
			return h.nextCardScreen(ctx, userID, mode, domain)
		}
		if err != nil {
			return screen{}, err
		}

		sc, err := h.nextCardScreen(ctx, userID, mode, domain)
		if err != nil {
			return screen{}, err
		}
		if outcome.Applied() {
			sc.notice = msgCardReviewedNotice
		}
		return sc, nil
	default:
		return noticeOnly(msgNothingToChange), nil
	}
}

// nextCardScreen shows the front of a random card from the selection.
func (h *Handler) nextCardScreen(
	ctx context.Context, userID int64, mode service.StudyMode, domain entities.DomainID,
) (screen, error) {
	deck, err := h.Flashcards.Deck(ctx, userID, service.FlashcardFilter{Domain: domain, Mode: mode})
	if err != nil {
		return screen{}, err
	}
	if len(deck) == 0 {
		return screen{text: md(msgNoCards), kb: markup(buildCardModesKeyboard(domain))}, nil
	}
	return h.cardScreen(ctx, userID, deck[0].ID, mode, domain, false)
}

func (h *Handler) cardScreen(
	ctx context.Context, userID int64, cardID string, mode service.StudyMode, domain entities.DomainID, flipped bool,
) (screen, error) {
	card, err := h.Flashcards.Card(ctx, cardID)
	if errors.Is(err, repository.ErrFlashcardNotFound) {
		return h.nextCardScreen(ctx, userID, mode, domain)
	}
	if err != nil {
		return screen{}, err
	}

	entry, _, err := h.Flashcards.Entry(ctx, userID, cardID)
	if err != nil {
		return screen{}, err
	}

	kb := buildCardFrontKeyboard(card.ID, mode, domain)
	if flipped {
		kb = buildCardBackKeyboard(card.ID, mode, domain)
	}

	return screen{text: formatFlashcard(card, entry, flipped), kb: markup(kb)}, nil
}
