package server

import (
	"log/slog"
	"net/http"

	"github.com/jghoshh/streakly/backend/models"
)

type handler struct {
	deps   Deps
	logger *slog.Logger
}

type habitEnvelope struct {
	Message string       `json:"message"`
	Habit   models.Habit `json:"habit"`
}

type goalEnvelope struct {
	Message string      `json:"message"`
	Goal    models.Goal `json:"goal"`
}

type userEnvelope struct {
	Message string      `json:"message"`
	User    models.User `json:"user"`
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) listHabits(w http.ResponseWriter, r *http.Request) {
	list, err := h.deps.Habits.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) createHabit(w http.ResponseWriter, r *http.Request) {
	var in models.HabitInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	created, err := h.deps.Habits.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, habitEnvelope{Message: "Habit added successfully", Habit: created})
}

func (h *handler) updateHabit(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var in models.HabitInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	updated, err := h.deps.Habits.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, habitEnvelope{Message: "Habit updated successfully", Habit: updated})
}

func (h *handler) adjustStreak(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var in models.StreakUpdate
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := requireFields(boolField("completed", in.Completed)); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	updated, err := h.deps.Habits.AdjustStreak(r.Context(), id, *in.Completed)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, habitEnvelope{Message: "Streak updated", Habit: updated})
}

func (h *handler) deleteHabit(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.deps.Habits.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Habit deleted successfully"})
}

func (h *handler) listGoals(w http.ResponseWriter, r *http.Request) {
	list, err := h.deps.Goals.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) createGoal(w http.ResponseWriter, r *http.Request) {
	var in models.GoalInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	created, err := h.deps.Goals.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, goalEnvelope{Message: "Goal added successfully", Goal: created})
}

func (h *handler) setMilestone(w http.ResponseWriter, r *http.Request) {
	goalID, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	milestoneID, err := pathInt(r, "milestoneId")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var in models.MilestoneUpdate
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := requireFields(boolField("completed", in.Completed)); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	updated, err := h.deps.Goals.SetMilestone(r.Context(), goalID, milestoneID, *in.Completed)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, goalEnvelope{Message: "Milestone updated", Goal: updated})
}

func (h *handler) deleteGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.deps.Goals.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Goal deleted successfully"})
}

// recommend returns the model's envelope as is, with the stored goal under "suggestion".
func (h *handler) recommend(w http.ResponseWriter, r *http.Request) {
	var in models.PromptRequest
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := requireFields(stringField("prompt", in.Prompt)); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	envelope, err := h.deps.Suggest.Suggest(r.Context(), *in.Prompt)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope)
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var in models.SignupRequest
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	err := requireFields(
		stringField("username", in.Username),
		stringField("email", in.Email),
		stringField("password", in.Password),
		stringField("avatar", in.Avatar),
	)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	user, err := h.deps.Auth.Register(r.Context(), *in.Username, *in.Email, *in.Password, *in.Avatar)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, userEnvelope{Message: "Registration successful", User: user})
}

// login answers with the user record minus the password.
func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var in models.LoginRequest
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := requireFields(stringField("email", in.Email), stringField("password", in.Password)); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	user, err := h.deps.Auth.Login(r.Context(), *in.Email, *in.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	summary, err := h.deps.Stats.Summary(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
