package processors

import (
	"context"
	"fmt"
	"log"
	"time"

	"meetScribe/core"
	"meetScribe/notify"
	"meetScribe/storage"
)

// Pipeline runs the full recording flow for one meeting: transcribe,
// translate, persist fragments, summarize, index, notify. Each stage is
// logged; a failed stage marks the meeting failed and stops.
type Pipeline struct {
	Store       storage.MeetingStore
	Vector      storage.VectorStore
	Transcriber TranscriptionProvider
	Translator  *Translator
	Engine      *SummaryEngine
	Notifier    *notify.Notifier

	// OnFragment, when set, receives each fragment as it is produced so
	// live subscribers can follow along. Optional.
	OnFragment func(meetingID string, frag core.TranscriptFragment)
}

// ProcessRecording processes a finished recording for the given meeting.
// On success the meeting ends up StatusCompleted with a stored summary;
// on any stage failure it ends up StatusFailed.
func (p *Pipeline) ProcessRecording(ctx context.Context, meetingID, ownerID, recordingPath, targetLanguage string) (core.SummaryResult, error) {
	start := time.Now()
	log.Printf("[Pipeline] processing recording for meeting %s: %s", meetingID, recordingPath)

	meeting, err := p.Store.GetMeeting(ctx, meetingID, ownerID)
	if err != nil {
		return core.SummaryResult{}, fmt.Errorf("load meeting: %w", err)
	}

	if err := p.Store.UpdateMeetingStatus(ctx, meetingID, core.StatusRecording); err != nil {
		return core.SummaryResult{}, fmt.Errorf("mark recording: %w", err)
	}

	result, err := p.run(ctx, meeting, recordingPath, targetLanguage)
	if err != nil {
		if statusErr := p.Store.UpdateMeetingStatus(ctx, meetingID, core.StatusFailed); statusErr != nil {
			log.Printf("[Pipeline] failed to mark meeting %s failed: %v", meetingID, statusErr)
		}
		return core.SummaryResult{}, err
	}

	if err := p.Store.UpdateMeetingStatus(ctx, meetingID, core.StatusCompleted); err != nil {
		return core.SummaryResult{}, fmt.Errorf("mark completed: %w", err)
	}
	log.Printf("[Pipeline] meeting %s processed in %v", meetingID, time.Since(start))
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, meeting core.Meeting, recordingPath, targetLanguage string) (core.SummaryResult, error) {
	fragments, err := p.Transcriber.Transcribe(recordingPath, targetLanguage)
	if err != nil {
		return core.SummaryResult{}, fmt.Errorf("transcribe: %w", err)
	}
	log.Printf("[Pipeline] transcribed %d fragments for meeting %s", len(fragments), meeting.ID)

	if targetLanguage != "" {
		fragments = p.Translator.TranslateFragments(ctx, fragments, targetLanguage)
	}

	if p.OnFragment != nil {
		for _, frag := range fragments {
			p.OnFragment(meeting.ID, frag)
		}
	}

	if err := p.Store.SaveFragments(ctx, meeting.ID, fragments); err != nil {
		return core.SummaryResult{}, fmt.Errorf("save fragments: %w", err)
	}

	result := p.Engine.GenerateSummary(fragments)

	if err := p.Store.SaveSummary(ctx, core.StoredSummary{
		MeetingID:   meeting.ID,
		Summary:     result.Summary,
		KeyPoints:   result.KeyPoints,
		ActionItems: result.ActionItems,
		CreatedAt:   time.Now(),
	}); err != nil {
		return core.SummaryResult{}, fmt.Errorf("save summary: %w", err)
	}

	if p.Vector != nil {
		indexed := p.Vector.Upsert(meeting.ID, fragments)
		log.Printf("[Pipeline] indexed %d segments for meeting %s", indexed, meeting.ID)
	}

	if p.Notifier != nil {
		attendees, err := p.Store.Attendees(ctx, meeting.ID)
		if err != nil {
			log.Printf("[Pipeline] load attendees for meeting %s: %v", meeting.ID, err)
		} else if err := p.Notifier.SendSummary(meeting, attendees, result); err != nil {
			log.Printf("[Pipeline] notify for meeting %s: %v", meeting.ID, err)
		}
	}

	return result, nil
}
