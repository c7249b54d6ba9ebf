package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/garagekeeper/internal/common"
	"github.com/dmitrijs2005/garagekeeper/internal/server/models"
	"github.com/dmitrijs2005/garagekeeper/internal/server/services"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type attachmentRequest struct {
	FileName string `json:"fileName"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, common.MessageBackendHealthy)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in services.SignupInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	session, err := s.svc.Accounts.Signup(r.Context(), in)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	s.logger.Info(r.Context(), "Registered", "username", session.User.Username)
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	session, err := s.svc.Accounts.Login(r.Context(), in.Username, in.Password)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, principal(r))
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.svc.Accounts.List(r.Context(), principal(r))
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var in services.CreateUserInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	user, err := s.svc.Accounts.AdminCreate(r.Context(), principal(r), in)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.svc.Accounts.Get(r.Context(), principal(r), pathVar(r, "id"))
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	var in services.UpdateUserInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	user, err := s.svc.Accounts.Update(r.Context(), principal(r), pathVar(r, "id"), in)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Accounts.Delete(r.Context(), principal(r), pathVar(r, "id")); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listCars(w http.ResponseWriter, r *http.Request) {
	cars, err := s.svc.Cars.List(r.Context())
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cars)
}

func (s *Server) createCar(w http.ResponseWriter, r *http.Request) {
	var car models.Car
	if err := decodeJSON(w, r, &car); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	created, err := s.svc.Cars.Create(r.Context(), &car)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) getCar(w http.ResponseWriter, r *http.Request) {
	car, err := s.svc.Cars.Get(r.Context(), pathVar(r, "id"))
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, car)
}

func (s *Server) updateCar(w http.ResponseWriter, r *http.Request) {
	var car models.Car
	if err := decodeJSON(w, r, &car); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	updated, err := s.svc.Cars.Update(r.Context(), pathVar(r, "id"), &car)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteCar(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Cars.Delete(r.Context(), pathVar(r, "id")); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listWorkOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.WorkOrderFilter{
		CarID:      q.Get("carId"),
		Status:     models.WorkOrderStatus(q.Get("status")),
		AssignedTo: q.Get("assignedTo"),
	}

	orders, err := s.svc.WorkOrders.List(r.Context(), filter)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *Server) createWorkOrder(w http.ResponseWriter, r *http.Request) {
	var in services.CreateWorkOrderInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	wo, err := s.svc.WorkOrders.Create(r.Context(), principal(r), in)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, wo)
}

func (s *Server) getWorkOrder(w http.ResponseWriter, r *http.Request) {
	wo, err := s.svc.WorkOrders.Get(r.Context(), pathVar(r, "id"))
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, wo)
}

func (s *Server) updateWorkOrder(w http.ResponseWriter, r *http.Request) {
	var in services.UpdateWorkOrderInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	wo, err := s.svc.WorkOrders.Update(r.Context(), pathVar(r, "id"), in)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, wo)
}

func (s *Server) deleteWorkOrder(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.WorkOrders.Delete(r.Context(), pathVar(r, "id")); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listAttachments(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Attachments.List(r.Context(), pathVar(r, "id"))
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) registerAttachment(w http.ResponseWriter, r *http.Request) {
	var in attachmentRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	up, err := s.svc.Attachments.Register(r.Context(), pathVar(r, "id"), in.FileName)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, up)
}

func (s *Server) downloadAttachment(w http.ResponseWriter, r *http.Request) {
	down, err := s.svc.Attachments.Download(r.Context(), pathVar(r, "id"), pathVar(r, "attachmentID"))
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, down)
}
