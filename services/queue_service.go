package services

import (
	"errors"
	"fmt"
	"sync"

	"github.com/campus-coop/coop-queue-api/models"
	"gorm.io/gorm"
)

// QueueService allocates the sequential per-date queue numbers. All
// read-increment-write cycles for one date run under that date's mutex,
// inside the caller's transaction, so concurrent submissions can never
// skip or duplicate a number.
type QueueService struct {
	db    *gorm.DB
	locks sync.Map // queue date (YYYY-MM-DD) -> *sync.Mutex
}

// NewQueueService creates a queue allocator backed by the given database
func NewQueueService(db *gorm.DB) *QueueService {
	return &QueueService{db: db}
}

func (q *QueueService) lockFor(date string) *sync.Mutex {
	lock, _ := q.locks.LoadOrStore(date, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// WithDateLock runs fn while holding the lock for the given queue date.
// Order transitions that allocate numbers wrap their whole transaction in
// this, so the counter value read inside the transaction stays valid
// until commit.
func (q *QueueService) WithDateLock(date string, fn func() error) error {
	lock := q.lockFor(date)
	lock.Lock()
	defer lock.Unlock()
	return fn()
}

// NextQueueNumber issues the next number for the given service date
// inside the supplied transaction. The caller must hold the date lock
// (see WithDateLock). Numbers start at 1 per date and restart after an
// administrative reset.
func (q *QueueService) NextQueueNumber(tx *gorm.DB, date string) (string, int, error) {
	var counter models.QueueCounter
	if err := tx.Where(models.QueueCounter{QueueDate: date}).FirstOrCreate(&counter).Error; err != nil {
		return "", 0, fmt.Errorf("failed to load queue counter for %s: %w", date, err)
	}

	counter.LastNumber++
	if err := tx.Save(&counter).Error; err != nil {
		return "", 0, fmt.Errorf("failed to advance queue counter for %s: %w", date, err)
	}

	return FormatQueueNumber(counter.LastNumber), counter.LastNumber, nil
}

// ResetDailyQueue restarts today's numbering from 1. Allowed at most once
// per calendar day; the reset row's unique index backs up the in-process
// check.
func (q *QueueService) ResetDailyQueue(date string, staffID uint) error {
	return q.WithDateLock(date, func() error {
		return q.db.Transaction(func(tx *gorm.DB) error {
			var existing models.QueueReset
			err := tx.Where("reset_date = ?", date).First(&existing).Error
			if err == nil {
				return ErrQueueAlreadyReset
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to check queue resets for %s: %w", date, err)
			}

			if err := tx.Create(&models.QueueReset{ResetDate: date, ResetBy: staffID}).Error; err != nil {
				return fmt.Errorf("failed to record queue reset for %s: %w", date, err)
			}

			var counter models.QueueCounter
			if err := tx.Where(models.QueueCounter{QueueDate: date}).FirstOrCreate(&counter).Error; err != nil {
				return fmt.Errorf("failed to load queue counter for %s: %w", date, err)
			}
			counter.LastNumber = 0
			if err := tx.Save(&counter).Error; err != nil {
				return fmt.Errorf("failed to reset queue counter for %s: %w", date, err)
			}
			return nil
		})
	})
}

// FormatQueueNumber renders the human-readable form of a queue sequence
func FormatQueueNumber(n int) string {
	return fmt.Sprintf("Q-%d", n)
}

var queueServiceInstance *QueueService

// InitQueueService initializes the queue allocator
func InitQueueService(db *gorm.DB) *QueueService {
	queueServiceInstance = NewQueueService(db)
	return queueServiceInstance
}

// GetQueueService returns the initialized queue allocator instance
func GetQueueService() *QueueService {
	return queueServiceInstance
}
