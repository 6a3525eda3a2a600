package users

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

const MountPath = "/api/users"

//MakeHandler routes the account operations under MountPath.
func MakeHandler(svc Service, logger *zap.Logger) http.Handler {
	router := httprouter.New()
	router.Handler(http.MethodPost, MountPath, RegisterAccountHandler(svc))
	router.Handler(http.MethodGet, MountPath, ListAccountsHandler(svc))
	router.Handler(http.MethodGet, MountPath+"/:id", GetAccountHandler(svc))
	router.Handler(http.MethodPut, MountPath+"/:id", UpdateAccountHandler(svc))
	router.Handler(http.MethodDelete, MountPath+"/:id", DeleteAccountHandler(svc))

	return LogRequests(router, logger)
}

func RegisterAccountHandler(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeRegisterAccountRequest(r.Body)
		if err != nil {
			encodeJSON(w, http.StatusBadRequest, messageResponse{Msg: "Invalid request"})
			return
		}

		token, err := svc.Register(r.Context(), req)
		if err != nil {
			encodeError(err, w)
			return
		}

		encodeJSON(w, http.StatusOK, registerAccountResponse{Token: token})
	})
}

func ListAccountsHandler(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accounts, err := svc.ListAccounts(r.Context())
		if err != nil {
			encodeError(err, w)
			return
		}

		encodeJSON(w, http.StatusOK, accounts)
	})
}

func GetAccountHandler(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acc, err := svc.GetAccount(r.Context(), idParam(r))
		if err != nil {
			encodeError(err, w)
			return
		}

		encodeJSON(w, http.StatusOK, acc)
	})
}

func UpdateAccountHandler(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeUpdateAccountRequest(r.Body)
		if err != nil {
			encodeJSON(w, http.StatusBadRequest, messageResponse{Msg: "Invalid request"})
			return
		}

		acc, err := svc.UpdateAccount(r.Context(), idParam(r), req)
		if err != nil {
			encodeError(err, w)
			return
		}

		encodeJSON(w, http.StatusOK, acc)
	})
}

func DeleteAccountHandler(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteAccount(r.Context(), idParam(r)); err != nil {
			encodeError(err, w)
			return
		}

		encodeJSON(w, http.StatusOK, messageResponse{Msg: "Contacts removed"})
	})
}

func idParam(r *http.Request) ID {
	return ID(httprouter.ParamsFromContext(r.Context()).ByName("id"))
}

func encodeError(err error, w http.ResponseWriter) {
	var verrs ValidationErrors
	switch {
	case errors.As(err, &verrs):
		encodeJSON(w, http.StatusBadRequest, validationResponse{Errors: verrs})
	case errors.Is(err, ErrExistingEmail):
		encodeJSON(w, http.StatusBadRequest, messageResponse{Msg: "User already exist"})
	case errors.Is(err, ErrNotFound):
		encodeJSON(w, http.StatusNotFound, messageResponse{Msg: "Contact not found"})
	default:
		encodeJSON(w, http.StatusInternalServerError, messageResponse{Msg: "Server error"})
	}
}

func encodeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeRegisterAccountRequest(body io.Reader) (registerAccountRequest, error) {
	req := registerAccountRequest{}
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return registerAccountRequest{}, nil
		}
		return registerAccountRequest{}, err
	}
	return req, nil
}

func decodeUpdateAccountRequest(body io.Reader) (updateAccountRequest, error) {
	req := updateAccountRequest{}
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return updateAccountRequest{}, err
	}
	return req, nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

//LogRequests writes one line per request with its outcome.
func LogRequests(next http.Handler, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("http")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
