package rpc

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"exam-scheduler/internal/scheduling"
)

type idRequest struct {
	ID float64 `json:"id"`
}

func (r idRequest) id() (int64, error) {
	if r.ID <= 0 || r.ID != float64(int64(r.ID)) {
		return 0, status.Error(codes.InvalidArgument, "id must be a positive integer")
	}
	return int64(r.ID), nil
}

func (s *Server) ListExams(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req struct {
		Specialty string `json:"specialty"`
	}
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	var (
		exams any
		err   error
	)
	if req.Specialty != "" {
		exams, err = s.svc.ExamsBySpecialty(ctx, req.Specialty)
	} else {
		exams, err = s.svc.ListExams(ctx)
	}
	return s.reply(map[string]any{"exams": exams}, err)
}

func (s *Server) ListAppointments(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req struct {
		Status    string `json:"status"`
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
	}
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	out, err := s.svc.List(ctx, scheduling.ListQuery{
		Status:    req.Status,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	return s.reply(map[string]any{"appointments": out}, err)
}

func (s *Server) GetAppointment(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req idRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	id, err := req.id()
	if err != nil {
		return nil, err
	}
	return s.reply(s.svc.Get(ctx, id))
}

func (s *Server) CreateAppointment(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req struct {
		PatientName  string  `json:"patientName"`
		PatientEmail string  `json:"patientEmail"`
		PatientPhone *string `json:"patientPhone"`
		ExamID       float64 `json:"examId"`
		DateTime     string  `json:"dateTime"`
		Notes        *string `json:"notes"`
	}
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	return s.reply(s.svc.Admit(ctx, scheduling.Candidate{
		PatientName:  req.PatientName,
		PatientEmail: req.PatientEmail,
		PatientPhone: req.PatientPhone,
		ExamID:       int64(req.ExamID),
		DateTime:     req.DateTime,
		Notes:        req.Notes,
	}))
}

func (s *Server) UpdateAppointmentStatus(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req struct {
		idRequest
		Status string `json:"status"`
	}
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	id, err := req.id()
	if err != nil {
		return nil, err
	}
	return s.reply(s.svc.ChangeStatus(ctx, id, req.Status))
}

func (s *Server) DeleteAppointment(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req idRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	id, err := req.id()
	if err != nil {
		return nil, err
	}
	if err := s.svc.Delete(ctx, id); err != nil {
		return nil, s.toStatus(err)
	}
	return &structpb.Struct{}, nil
}
