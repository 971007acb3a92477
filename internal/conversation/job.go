package conversation

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type AskJobStatus string

const (
	JobQueued    AskJobStatus = "queued"
	JobRunning   AskJobStatus = "running"
	JobSucceeded AskJobStatus = "succeeded"
	JobFailed    AskJobStatus = "failed"
)

// AskJob tracks one asynchronously processed user turn.
type AskJob struct {
	ID string `gorm:"primaryKey;size:26"` // ULID length

	ConversationID string `gorm:"type:varchar(36);index;not null;index:uniq_conv_idempo,unique,priority:1"`

	Prompt string `gorm:"type:text;not null"`

	IdempotencyKey *string `gorm:"type:varchar(128);index:uniq_conv_idempo,unique,priority:2" json:"idempotency_key"`

	Status AskJobStatus `gorm:"type:varchar(16);index;not null"`

	// Filled when succeeded
	ResultMessageID *uint64 `gorm:"index"`

	// Filled when failed
	Error *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (AskJob) TableName() string { return "ask_jobs" }

func (r *Repo) CreateJob(ctx context.Context, job *AskJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *Repo) GetJobByID(ctx context.Context, id string) (*AskJob, error) {
	var j AskJob
	if err := r.db.WithContext(ctx).First(&j, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &j, nil
}

func (r *Repo) UpdateJobStatusRunning(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&AskJob{}).
		Where("id = ? AND status = ?", id, JobQueued).
		Update("status", JobRunning).Error
}

func (r *Repo) MarkJobSucceeded(ctx context.Context, id string, assistantMsgID uint64) error {
	return r.db.WithContext(ctx).Model(&AskJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":            JobSucceeded,
			"result_message_id": assistantMsgID,
			"error":             nil,
		}).Error
}

func (r *Repo) MarkJobFailed(ctx context.Context, id string, errMsg string) error {
	return r.db.WithContext(ctx).Model(&AskJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":            JobFailed,
			"error":             errMsg,
			"result_message_id": nil,
		}).Error
}

func (r *Repo) GetJobByIdempotencyKey(ctx context.Context, conversationID, key string) (*AskJob, error) {
	var job AskJob
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND idempotency_key = ?", conversationID, key).
		First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// CreateJobOrGetExisting tries to create a job, but if the conversation
// already has a job with the same idempotency key it returns the existing one.
func (r *Repo) CreateJobOrGetExisting(ctx context.Context, job *AskJob) (*AskJob, bool, error) {
	if job.IdempotencyKey == nil || *job.IdempotencyKey == "" {
		job.IdempotencyKey = nil
		if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
			return nil, false, err
		}
		return job, true, nil
	}

	err := r.db.WithContext(ctx).Create(job).Error
	if err == nil {
		return job, true, nil
	}

	existing, getErr := r.GetJobByIdempotencyKey(ctx, job.ConversationID, *job.IdempotencyKey)
	if getErr == nil {
		return existing, false, nil
	}

	if errors.Is(getErr, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	return nil, false, getErr
}
