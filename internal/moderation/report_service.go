// Package moderation handles user reports filed from chat rooms,
// including reputation management and account suspension.
package moderation

import (
	"errors"
	"log"
	"time"

	"motomarket/backend/internal/config"
	"motomarket/backend/internal/models"
	"motomarket/backend/internal/storage"
)

var ErrSelfReport = errors.New("cannot report yourself")

// Service handles the business logic for reports.
type Service struct {
	Storage storage.Storage
}

// NewService creates a new moderation service.
func NewService(s storage.Storage) *Service {
	return &Service{Storage: s}
}

// reasonWeight maps a report reason to its reputation cost. Unknown
// reasons get the lowest weight rather than being rejected.
func reasonWeight(reason string) int {
	if w, ok := config.ReportWeights[reason]; ok {
		return w
	}
	return config.ReportWeights[models.ReportReasonSpam]
}

// HandleReport persists a new report, applies the reputation penalty and
// checks whether the target crosses a suspension threshold.
func (s *Service) HandleReport(report *models.Report) error {
	if report.ReporterID == report.TargetID {
		return ErrSelfReport
	}

	// Both parties must belong to the room the report points at.
	room, err := s.Storage.GetRoomByID(report.RoomID)
	if err != nil {
		return err
	}
	if !room.HasParticipant(report.ReporterID) || !room.HasParticipant(report.TargetID) {
		return storage.ErrUnauthorized
	}

	if err := s.Storage.SaveReport(report); err != nil {
		return err
	}

	weight := reasonWeight(report.Reason)
	if err := s.Storage.UpdateUserReputation(report.TargetID, -weight); err != nil {
		return err
	}

	return s.checkForSuspension(report.TargetID)
}

// checkForSuspension suspends a user whose reputation dropped below the
// threshold, or who accumulated too many reports inside the frequency
// window.
func (s *Service) checkForSuspension(userID string) error {
	user, err := s.Storage.GetUserByID(userID)
	if err != nil {
		return err
	}

	if user.ReputationScore < config.SuspendThreshold {
		return s.applySuspension(user)
	}

	since := time.Now().Add(-config.ReportFrequencyWindow)
	count, err := s.Storage.CountRecentReports(userID, since)
	if err != nil {
		return err
	}
	if count > int64(config.ReportFrequencyLimit) {
		return s.applySuspension(user)
	}

	return nil
}

func (s *Service) applySuspension(user *models.User) error {
	level := 1
	if user.SuspendedUntil != nil {
		// Repeat offenders escalate based on how recent the last
		// suspension was.
		if time.Since(*user.SuspendedUntil) < 7*24*time.Hour {
			level = 2
		} else if time.Since(*user.SuspendedUntil) < 30*24*time.Hour {
			level = 3
		}
	}

	until := time.Now().Add(suspensionDuration(level))
	user.SuspendedUntil = &until
	log.Printf("User %s suspended until %s (level %d)", user.ID, until.Format(time.RFC3339), level)
	return s.Storage.SaveUser(user)
}

func suspensionDuration(level int) time.Duration {
	switch level {
	case 1:
		return config.SuspendLevel1Duration
	case 2:
		return config.SuspendLevel2Duration
	default:
		return config.SuspendLevel3Duration
	}
}
