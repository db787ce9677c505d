package execution

import (
	"time"

	"vrt/internal/domain"
)

// Executor runs test cases and returns their results in discovery order
type Executor interface {
	Execute(cases []domain.Case) ([]domain.CaseResult, time.Duration, error)
}
