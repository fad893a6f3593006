package session

import (
	"testing"

	"examhub/backend/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func makeQuestion(qType models.QuestionType, correct ...uint) models.Question {
	correctSet := make(map[uint]bool)
	for _, id := range correct {
		correctSet[id] = true
	}

	q := models.Question{Type: qType, Text: "q"}
	for id := uint(1); id <= 4; id++ {
		q.Answers = append(q.Answers, models.Answer{
			Model:     gorm.Model{ID: id},
			Text:      "option",
			IsCorrect: correctSet[id],
			Position:  int(id),
		})
	}
	return q
}

func TestGradeSingleChoice(t *testing.T) {
	q := makeQuestion(models.SingleChoice, 2)

	assert.True(t, Grade(q, []int64{2}))
	assert.False(t, Grade(q, []int64{1}))
	assert.False(t, Grade(q, []int64{2, 3}))
	assert.False(t, Grade(q, nil))
}

func TestGradeMultipleChoiceExactSet(t *testing.T) {
	q := makeQuestion(models.MultipleChoice, 1, 3)

	assert.True(t, Grade(q, []int64{1, 3}))
	assert.True(t, Grade(q, []int64{3, 1}), "order must not matter")
	assert.True(t, Grade(q, []int64{1, 3, 3, 1}), "duplicates must not matter")
	assert.False(t, Grade(q, []int64{1}), "partial selection is incorrect")
	assert.False(t, Grade(q, []int64{1, 3, 4}), "extra selection is incorrect")
	assert.False(t, Grade(q, []int64{2, 4}))
}

func TestNormalizeSelection(t *testing.T) {
	assert.Equal(t, []int64{1, 2, 5}, NormalizeSelection([]int64{5, 2, 1, 2, 5}))
	assert.Nil(t, NormalizeSelection(nil))
	assert.Nil(t, NormalizeSelection([]int64{}))
	assert.Equal(t, []int64{7}, NormalizeSelection([]int64{7, 7, 7}))
}
