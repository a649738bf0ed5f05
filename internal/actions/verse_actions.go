package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/phrazzld/maika/internal/content"
	"github.com/phrazzld/maika/internal/domain"
)

// sampleVerseCount is how many verses are offered when a search misses.
const sampleVerseCount = 3

// helpfulWords mark an affirmative answer to MsgAskHelpful.
var helpfulWords = []string{"sí", "si", "correcto", "útil", "util", "gracias"}

func (d *Dispatcher) verseOfDay(_ context.Context, _ Request) (Response, error) {
	v := d.deps.Rotation.VerseOfDay()

	var resp Response
	resp.Say(formatVerseOfDay(v))
	resp.Set(SlotLastVerse, v.ItemID())
	return resp, nil
}

func (d *Dispatcher) reviewVerse(ctx context.Context, req Request) (Response, error) {
	itemID := req.stateString(SlotLastVerse, domain.DefaultReviewItemID)
	ease, err := req.stateFloat(SlotEase, domain.DefaultEase)
	if err != nil {
		return Response{}, err
	}
	interval, err := req.stateInt(SlotInterval, 0)
	if err != nil {
		return Response{}, err
	}
	result := domain.ParseReviewResult(req.RawText)

	schedule, err := d.deps.Reviews.ReviewResult(ctx, req.UserID, itemID, ease, interval, result)
	if err != nil {
		return Response{}, err
	}

	var resp Response
	resp.Say(fmt.Sprintf("¡Anotado! Próximo repaso en %d días.", schedule.IntervalDays))
	resp.Set(SlotEase, schedule.Ease)
	resp.Set(SlotInterval, schedule.IntervalDays)
	return resp, nil
}

func (d *Dispatcher) dueReviews(ctx context.Context, req Request) (Response, error) {
	due, err := d.deps.Reviews.DueReviews(ctx, req.UserID)
	if err != nil {
		return Response{}, err
	}

	var resp Response
	if len(due) == 0 {
		resp.Say(MsgNoDueReviews)
		return resp, nil
	}

	ix := d.deps.Content.Index()
	lines := make([]string, 0, len(due))
	for _, r := range due {
		lines = append(lines, "• "+describeItem(ix, r.ItemID))
	}
	resp.Say(fmt.Sprintf("Tienes %d versículos para repasar:\n\n%s", len(due), strings.Join(lines, "\n")))

	// The next review continues from the earliest due item.
	first := due[0]
	resp.Set(SlotLastVerse, first.ItemID)
	resp.Set(SlotEase, first.Ease)
	resp.Set(SlotInterval, first.IntervalDays)
	return resp, nil
}

// describeItem renders an SRS item id as a reference with its text when the
// verse is known.
func describeItem(ix *content.Index, itemID string) string {
	book, chapter, verse, err := domain.ParseItemID(itemID)
	if err != nil {
		return itemID
	}
	if v, ok := ix.Lookup(book, chapter, verse); ok {
		return formatVerse(v, " ")
	}
	return domain.Verse{Book: book, Chapter: chapter, Verse: verse}.Reference()
}

func (d *Dispatcher) searchVerse(ctx context.Context, req Request) (Response, error) {
	d.recordQuery(ctx, req, req.intentOr("preguntar_versiculo"), nil)

	ix := d.deps.Content.Index()
	book := req.entityString(EntityBook)
	chapter, hasChapter := req.entityInt(EntityChapter)
	verse, hasVerse := req.entityInt(EntityVerse)
	if book == "" || !hasChapter || !hasVerse {
		var ok bool
		book, chapter, verse, ok = content.ParseReference(req.RawText)
		if !ok {
			book = ""
		}
	}

	var resp Response
	if book != "" {
		if v, ok := ix.Lookup(book, chapter, verse); ok {
			resp.Say(formatVerse(v, "\n\n"), MsgAskHelpful)
			return resp, nil
		}
	}

	resp.Say(MsgVerseNotFound)
	for _, v := range ix.Sample(sampleVerseCount) {
		resp.Say(formatVerse(v, "\n"))
	}
	resp.Say(MsgAskHelpful)
	return resp, nil
}

func (d *Dispatcher) searchTopic(ctx context.Context, req Request) (Response, error) {
	d.recordQuery(ctx, req, req.intentOr("buscar_por_tema"), nil)

	ix := d.deps.Content.Index()
	found := ix.Search(req.RawText, content.DefaultSearchLimit)

	var resp Response
	if len(found) > 0 {
		resp.Say(fmt.Sprintf("Encontré %d versículos relacionados con tu búsqueda:", len(found)))
		for _, v := range found {
			resp.Say(formatVerse(v, "\n"))
		}
	} else {
		resp.Say(MsgTopicNotFound)
		for _, v := range ix.Sample(sampleVerseCount) {
			resp.Say(formatVerse(v, "\n"))
		}
	}
	resp.Say(MsgAskHelpful)
	return resp, nil
}

func (d *Dispatcher) confirmResponse(ctx context.Context, req Request) (Response, error) {
	helpful := isHelpful(req.RawText)
	d.recordQuery(ctx, req, req.intentOr("confirmar_respuesta"), &helpful)

	var resp Response
	if helpful {
		resp.Say(MsgHelpfulThanks)
	} else {
		resp.Say(MsgNotHelpful)
	}
	return resp, nil
}

func isHelpful(text string) bool {
	lower := strings.ToLower(text)
	for _, w := range helpfulWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
