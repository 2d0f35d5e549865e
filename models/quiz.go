package models

import "quiz_app_backend/quiz"

type StartQuizRequest struct {
	Level int `json:"level" binding:"required,min=1,max=3"`
}

type AnswerRequest struct {
	Option string `json:"option" binding:"required,optionkey"`
}

// LevelStatus is one entry of the level picker.
type LevelStatus struct {
	quiz.LevelInfo
	Locked    bool         `json:"locked"`
	Completed bool         `json:"completed"`
	LastScore *int         `json:"last_score"`
	Result    *quiz.Result `json:"result,omitempty"`
}

type QuizResponse struct {
	Session quiz.SessionView `json:"session"`
	Notices []quiz.Notice    `json:"notices"`
}
