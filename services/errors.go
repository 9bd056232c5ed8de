package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/team-manager/models"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	ErrGameNotFound   = errors.New("game not found")
	ErrCardNotFound   = errors.New("card not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrJobNotFound    = errors.New("job not found")
	ErrTeamNotFound   = errors.New("team not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidStatus    = errors.New("invalid game status for this operation")
	ErrIncompleteReport = errors.New("game report is incomplete")
	ErrInvalidLineup    = errors.New("invalid starting lineup")
	ErrInvalidDraft     = errors.New("draft payload must be a JSON object")

	// Ошибки аутентификации и авторизации
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")
)

// InvalidStatusError reports an operation the game's current status does not permit.
type InvalidStatusError struct {
	Op      string
	Status  models.GameStatus
	Allowed []models.GameStatus
}

func (e *InvalidStatusError) Error() string {
	if e.Op == "" || e.Op == opWriteDraft {
		return fmt.Sprintf("game status is %q: drafts are accepted only for %q or %q games",
			e.Status, models.GameStatusScheduled, models.GameStatusPlayed)
	}
	allowed := make([]string, len(e.Allowed))
	for i, s := range e.Allowed {
		allowed[i] = fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("cannot %s: game status is %q, expected %s", e.Op, e.Status, strings.Join(allowed, " or "))
}

func (e *InvalidStatusError) Unwrap() error {
	return ErrInvalidStatus
}

// IncompleteReportError lists the report fields missing at finalization.
type IncompleteReportError struct {
	Missing []string
}

func (e *IncompleteReportError) Error() string {
	return fmt.Sprintf("game report is incomplete: missing %s", strings.Join(e.Missing, ", "))
}

func (e *IncompleteReportError) Unwrap() error {
	return ErrIncompleteReport
}
