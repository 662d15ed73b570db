package services

import (
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/mwangikibui/cert_track/database"
	"github.com/mwangikibui/cert_track/models"
	"github.com/mwangikibui/cert_track/websocket"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// How long a finalized attempt stays resident so a duplicate submit (second
// tab, retried request) can be answered with the identical result instead of
// a not-found.
const finalizedRetention = 10 * time.Minute

// ActiveAttempt is the in-memory handle for one running mock test. Nothing is
// persisted until it is finalized; a server restart discards in-progress
// answers, matching the only-terminal-state-is-saved persistence model.
type ActiveAttempt struct {
	ID         uuid.UUID
	LearnerID  uuid.UUID
	MockTestID uuid.UUID
	StartedAt  time.Time
	Deadline   time.Time

	questionIDs  []uuid.UUID
	answerKey    []int
	passingScore int

	mu            sync.Mutex
	answers       []int
	timer         *time.Timer
	finalized     bool
	autoSubmitted bool
	score         int
	passed        bool
}

type AttemptQuestion struct {
	ID           uuid.UUID `json:"id"`
	QuestionText string    `json:"question_text"`
	Options      string    `json:"options"`
}

type AttemptView struct {
	AttemptID       uuid.UUID         `json:"attempt_id"`
	TestID          uuid.UUID         `json:"test_id"`
	TestTitle       string            `json:"test_title"`
	DurationMinutes int               `json:"duration_minutes"`
	Deadline        time.Time         `json:"deadline"`
	Questions       []AttemptQuestion `json:"questions"`
	Answers         []int             `json:"answers"`
	Resumed         bool              `json:"resumed"`
}

type AttemptResult struct {
	Score         int  `json:"score"`
	Passed        bool `json:"passed"`
	AutoSubmitted bool `json:"auto_submitted"`
}

type learnerTest struct {
	learnerID uuid.UUID
	testID    uuid.UUID
}

var attemptsMu sync.Mutex
var activeAttempts = make(map[uuid.UUID]*ActiveAttempt)
var attemptByLearnerTest = make(map[learnerTest]uuid.UUID)

// ScoreAnswers is the single scoring routine shared by manual submit and the
// timer's auto-submit: the rounded percentage of answers matching the key.
// Unanswered slots are -1 and never match.
func ScoreAnswers(answers, answerKey []int) int {
	if len(answerKey) == 0 {
		return 0
	}
	correct := 0
	for i, key := range answerKey {
		if i < len(answers) && answers[i] == key {
			correct++
		}
	}
	return int(math.Round(float64(correct) / float64(len(answerKey)) * 100))
}

// StartAttempt opens a mock test for a learner. If the learner already has a
// running attempt at this test, that attempt is resumed instead of a second
// one being opened.
func StartAttempt(learnerID, testID uuid.UUID) (*AttemptView, error) {
	attemptsMu.Lock()
	existingID, ok := attemptByLearnerTest[learnerTest{learnerID, testID}]
	existing := activeAttempts[existingID]
	attemptsMu.Unlock()

	if ok && existing != nil {
		if view := resumeView(existing); view != nil {
			return view, nil
		}
	}

	var test models.MockTest
	if err := database.DB.Preload("Questions").First(&test, "id = ?", testID).Error; err != nil {
		return nil, ErrTestNotFound
	}

	now := time.Now()
	attempt := &ActiveAttempt{
		ID:           uuid.New(),
		LearnerID:    learnerID,
		MockTestID:   test.ID,
		StartedAt:    now,
		Deadline:     now.Add(time.Duration(test.DurationMinutes) * time.Minute),
		questionIDs:  make([]uuid.UUID, len(test.Questions)),
		answerKey:    make([]int, len(test.Questions)),
		passingScore: test.PassingScore,
		answers:      make([]int, len(test.Questions)),
	}

	questions := make([]AttemptQuestion, len(test.Questions))
	for i, q := range test.Questions {
		attempt.questionIDs[i] = q.ID
		attempt.answerKey[i] = q.CorrectOption
		attempt.answers[i] = -1
		questions[i] = AttemptQuestion{ID: q.ID, QuestionText: q.QuestionText, Options: q.Options}
	}

	attemptID := attempt.ID
	attempt.timer = time.AfterFunc(time.Until(attempt.Deadline), func() {
		autoSubmit(attemptID)
	})

	attemptsMu.Lock()
	activeAttempts[attempt.ID] = attempt
	attemptByLearnerTest[learnerTest{learnerID, testID}] = attempt.ID
	attemptsMu.Unlock()

	return &AttemptView{
		AttemptID:       attempt.ID,
		TestID:          test.ID,
		TestTitle:       test.Title,
		DurationMinutes: test.DurationMinutes,
		Deadline:        attempt.Deadline,
		Questions:       questions,
		Answers:         append([]int(nil), attempt.answers...),
	}, nil
}

func resumeView(a *ActiveAttempt) *AttemptView {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.finalized {
		return nil
	}

	var test models.MockTest
	if err := database.DB.Preload("Questions").First(&test, "id = ?", a.MockTestID).Error; err != nil {
		return nil
	}

	// The preload carries no ordering guarantee; a.answers is indexed by the
	// question order captured at start, so the resumed view must follow
	// a.questionIDs.
	byID := make(map[uuid.UUID]models.Question, len(test.Questions))
	for _, q := range test.Questions {
		byID[q.ID] = *q
	}
	questions := make([]AttemptQuestion, len(a.questionIDs))
	for i, id := range a.questionIDs {
		q := byID[id]
		questions[i] = AttemptQuestion{ID: q.ID, QuestionText: q.QuestionText, Options: q.Options}
	}

	return &AttemptView{
		AttemptID:       a.ID,
		TestID:          a.MockTestID,
		TestTitle:       test.Title,
		DurationMinutes: test.DurationMinutes,
		Deadline:        a.Deadline,
		Questions:       questions,
		Answers:         append([]int(nil), a.answers...),
		Resumed:         true,
	}
}

// SelectAnswer records the learner's pick for one question of a running
// attempt. Option values are trusted (an out-of-range option is a client bug,
// not a runtime failure path); the question index is bounds-checked.
func SelectAnswer(learnerID, attemptID uuid.UUID, questionIndex, optionIndex int) error {
	attempt, err := lookupAttempt(learnerID, attemptID)
	if err != nil {
		return err
	}

	attempt.mu.Lock()
	defer attempt.mu.Unlock()

	if attempt.finalized {
		return ErrAttemptFinalized
	}
	if questionIndex < 0 || questionIndex >= len(attempt.answers) {
		return fmt.Errorf("question index %d out of range", questionIndex)
	}

	attempt.answers[questionIndex] = optionIndex
	return nil
}

// SubmitAttempt finalizes the attempt with the learner's current answers.
// Submitting an already-finalized attempt returns the identical result and
// persists nothing new.
func SubmitAttempt(learnerID, attemptID uuid.UUID) (*AttemptResult, error) {
	attempt, err := lookupAttempt(learnerID, attemptID)
	if err != nil {
		return nil, err
	}
	return finalizeAttempt(attempt, false)
}

func autoSubmit(attemptID uuid.UUID) {
	attemptsMu.Lock()
	attempt := activeAttempts[attemptID]
	attemptsMu.Unlock()
	if attempt == nil {
		return
	}

	result, err := finalizeAttempt(attempt, true)
	if err != nil {
		log.Printf("🔥 Failed to auto-submit attempt %s: %v", attemptID, err)
		return
	}
	if result.AutoSubmitted {
		log.Printf("Timer expired, auto-submitted attempt %s (score %d)", attemptID, result.Score)
	}
}

// finalizeAttempt is the single finalize-once path behind both the manual
// submit and the timer callback: whichever runs first wins, the loser gets
// the cached result back.
func finalizeAttempt(a *ActiveAttempt, auto bool) (*AttemptResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.finalized {
		return &AttemptResult{Score: a.score, Passed: a.passed, AutoSubmitted: a.autoSubmitted}, nil
	}

	score := ScoreAnswers(a.answers, a.answerKey)
	passed := score >= a.passingScore
	completedAt := time.Now()

	record := models.TestAttempt{
		ID:          a.ID,
		LearnerID:   a.LearnerID,
		MockTestID:  a.MockTestID,
		StartedAt:   a.StartedAt,
		CompletedAt: completedAt,
		Score:       score,
		Passed:      passed,
		AutoSubmit:  auto,
	}

	answers := make([]models.AttemptAnswer, len(a.answers))
	for i, selected := range a.answers {
		answers[i] = models.AttemptAnswer{
			ID:             uuid.New(),
			TestAttemptID:  a.ID,
			QuestionID:     a.questionIDs[i],
			QuestionIndex:  i,
			SelectedOption: selected,
			IsCorrect:      selected == a.answerKey[i],
		}
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		if len(answers) > 0 {
			if err := tx.Create(&answers).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.finalized = true
	a.autoSubmitted = auto
	a.score = score
	a.passed = passed
	a.timer.Stop()

	attemptID := a.ID
	go func() {
		attemptsMu.Lock()
		delete(attemptByLearnerTest, learnerTest{a.LearnerID, a.MockTestID})
		attemptsMu.Unlock()

		time.Sleep(finalizedRetention)
		attemptsMu.Lock()
		delete(activeAttempts, attemptID)
		attemptsMu.Unlock()
	}()

	websocket.Push(a.LearnerID, "attempt_finalized", map[string]interface{}{
		"attempt_id":  a.ID.String(),
		"test_id":     a.MockTestID.String(),
		"score":       score,
		"passed":      passed,
		"auto_submit": auto,
	})

	return &AttemptResult{Score: score, Passed: passed, AutoSubmitted: auto}, nil
}

func lookupAttempt(learnerID, attemptID uuid.UUID) (*ActiveAttempt, error) {
	attemptsMu.Lock()
	attempt := activeAttempts[attemptID]
	attemptsMu.Unlock()

	if attempt == nil || attempt.LearnerID != learnerID {
		return nil, ErrAttemptNotFound
	}
	return attempt, nil
}
