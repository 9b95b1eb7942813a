package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"chembot/pkg/jobs"
)

// downloadPayload carries everything a worker needs to fetch an uploaded
// document from Telegram and attach it to a lecture.
type downloadPayload struct {
	LectureID string
	FileID    string
	Filename  string
	ChatID    int64
}

func (b *Bot) enqueueDownload(lectureID string, doc *tgbotapi.Document, chatID int64) {
	filename := doc.FileName
	if filename == "" {
		filename = doc.FileID
	}

	err := b.downloads.Enqueue(jobs.Job{
		ID:   doc.FileID,
		Type: "lecture-download",
		Payload: downloadPayload{
			LectureID: lectureID,
			FileID:    doc.FileID,
			Filename:  filename,
			ChatID:    chatID,
		},
	})
	if err != nil {
		b.logger.Sugar().Errorw("failed to enqueue download", "lecture_id", lectureID, "error", err)
		b.reply(chatID, "❌ Could not schedule the file download, try again.")
	}
}

// handleDownloadJob runs on a queue worker: fetch the bytes from Telegram,
// write them through the lecture service (atomic on disk), then report
// back to the admin chat. Failed attempts are retried by the queue.
func (b *Bot) handleDownloadJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(downloadPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}

	data, err := b.fetchTelegramFile(ctx, payload.FileID)
	if err != nil {
		if b.finalDownloadAttempt(job.Attempt) {
			b.reply(payload.ChatID, "❌ Could not download the file from Telegram.")
		}
		return err
	}

	_, err = b.lectures.AttachFile(ctx, payload.LectureID, payload.Filename, data)
	b.metrics.ObserveUpload(err)
	if err != nil {
		b.reply(payload.ChatID, "❌ Could not save the lecture file.")
		return err
	}

	b.reply(payload.ChatID, "✅ Lecture file saved: "+payload.Filename)
	return nil
}

// finalDownloadAttempt reports whether the attempt is the last one the
// queue will run, so the admin is told exactly once, after the configured
// retry budget is spent.
func (b *Bot) finalDownloadAttempt(attempt int) bool {
	return attempt >= b.downloads.MaxRetries()
}

func (b *Bot) fetchTelegramFile(ctx context.Context, fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build file request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file body: %w", err)
	}
	return data, nil
}
