package server

import (
	"encoding/json"
	"strconv"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	mdwerror "github.com/msto63/frege/foundation/core/error"
	"github.com/msto63/frege/foundation/expr/ast"
	"github.com/msto63/frege/internal/frege/service"
	"github.com/msto63/frege/internal/frege/store"
)

// Struct messages carry numbers as doubles, so 64-bit values (literal values
// and results) travel as decimal strings and the AST as its JSON text.

func encodeRequest(req service.Request) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"source":           structpb.NewStringValue(req.Source),
		"assoc":            structpb.NewStringValue(req.Assoc),
		"require_complete": structpb.NewBoolValue(req.RequireComplete),
		"request_id":       structpb.NewStringValue(req.RequestID),
	}}
}

func decodeRequest(s *structpb.Struct) (service.Request, error) {
	f := s.GetFields()
	src, ok := f["source"]
	if !ok {
		return service.Request{}, mdwerror.New("source is required").
			WithCode(mdwerror.CodeValidationFailed).
			WithOperation("server.decodeRequest")
	}
	return service.Request{
		Source:          src.GetStringValue(),
		Assoc:           f["assoc"].GetStringValue(),
		RequireComplete: f["require_complete"].GetBoolValue(),
		RequestID:       f["request_id"].GetStringValue(),
	}, nil
}

func encodeResponse(resp *service.Response) (*structpb.Struct, error) {
	fields := map[string]*structpb.Value{
		"id":          structpb.NewStringValue(resp.ID),
		"request_id":  structpb.NewStringValue(resp.RequestID),
		"source":      structpb.NewStringValue(resp.Source),
		"assoc":       structpb.NewStringValue(resp.Assoc),
		"success":     structpb.NewBoolValue(resp.Success),
		"message":     structpb.NewStringValue(resp.Message),
		"reason":      structpb.NewStringValue(resp.Reason),
		"tokens":      stringList(resp.Tokens),
		"printed":     structpb.NewStringValue(resp.Printed),
		"remaining":   stringList(resp.Remaining),
		"cached":      structpb.NewBoolValue(resp.Cached),
		"duration_ms": structpb.NewNumberValue(resp.Duration),
	}
	if resp.AST != nil {
		data, err := json.Marshal(resp.AST)
		if err != nil {
			return nil, mdwerror.Wrap(err, "encode ast").WithCode(mdwerror.CodeInternal)
		}
		fields["ast"] = structpb.NewStringValue(string(data))
	}
	if resp.Value != nil {
		fields["value"] = structpb.NewStringValue(strconv.FormatInt(*resp.Value, 10))
	}
	return &structpb.Struct{Fields: fields}, nil
}

func decodeResponse(s *structpb.Struct) (*service.Response, error) {
	f := s.GetFields()
	resp := &service.Response{
		ID:        f["id"].GetStringValue(),
		RequestID: f["request_id"].GetStringValue(),
		Source:    f["source"].GetStringValue(),
		Assoc:     f["assoc"].GetStringValue(),
		Success:   f["success"].GetBoolValue(),
		Message:   f["message"].GetStringValue(),
		Reason:    f["reason"].GetStringValue(),
		Tokens:    fromStringList(f["tokens"]),
		Printed:   f["printed"].GetStringValue(),
		Remaining: fromStringList(f["remaining"]),
		Cached:    f["cached"].GetBoolValue(),
		Duration:  f["duration_ms"].GetNumberValue(),
	}
	if raw, ok := f["ast"]; ok {
		e, err := ast.Decode([]byte(raw.GetStringValue()))
		if err != nil {
			return nil, err
		}
		resp.AST = e
	}
	if raw, ok := f["value"]; ok {
		v, err := parseInt(raw)
		if err != nil {
			return nil, err
		}
		resp.Value = &v
	}
	return resp, nil
}

func encodeHistory(entries []*store.Entry) *structpb.Struct {
	list := make([]*structpb.Value, 0, len(entries))
	for _, e := range entries {
		fields := map[string]*structpb.Value{
			"id":          structpb.NewStringValue(e.ID),
			"timestamp":   structpb.NewStringValue(e.Timestamp.Format(time.RFC3339Nano)),
			"request_id":  structpb.NewStringValue(e.RequestID),
			"operation":   structpb.NewStringValue(string(e.Operation)),
			"source":      structpb.NewStringValue(e.Source),
			"assoc":       structpb.NewStringValue(e.Assoc),
			"success":     structpb.NewBoolValue(e.Success),
			"message":     structpb.NewStringValue(e.Message),
			"ast":         structpb.NewStringValue(e.AST),
			"remaining":   structpb.NewNumberValue(float64(e.Remaining)),
			"duration_ms": structpb.NewNumberValue(e.Duration),
		}
		if e.Value != nil {
			fields["value"] = structpb.NewStringValue(strconv.FormatInt(*e.Value, 10))
		}
		list = append(list, structpb.NewStructValue(&structpb.Struct{Fields: fields}))
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"entries": structpb.NewListValue(&structpb.ListValue{Values: list}),
	}}
}

func decodeHistory(s *structpb.Struct) ([]*store.Entry, error) {
	values := s.GetFields()["entries"].GetListValue().GetValues()
	entries := make([]*store.Entry, 0, len(values))
	for _, v := range values {
		f := v.GetStructValue().GetFields()
		ts, err := time.Parse(time.RFC3339Nano, f["timestamp"].GetStringValue())
		if err != nil {
			return nil, mdwerror.Wrap(err, "decode history timestamp").WithCode(mdwerror.CodeInvalidInput)
		}
		entry := &store.Entry{
			ID:        f["id"].GetStringValue(),
			Timestamp: ts,
			RequestID: f["request_id"].GetStringValue(),
			Operation: store.Operation(f["operation"].GetStringValue()),
			Source:    f["source"].GetStringValue(),
			Assoc:     f["assoc"].GetStringValue(),
			Success:   f["success"].GetBoolValue(),
			Message:   f["message"].GetStringValue(),
			AST:       f["ast"].GetStringValue(),
			Remaining: int(f["remaining"].GetNumberValue()),
			Duration:  f["duration_ms"].GetNumberValue(),
		}
		if raw, ok := f["value"]; ok {
			val, err := parseInt(raw)
			if err != nil {
				return nil, err
			}
			entry.Value = &val
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseInt(v *structpb.Value) (int64, error) {
	n, err := strconv.ParseInt(v.GetStringValue(), 10, 64)
	if err != nil {
		return 0, mdwerror.Wrap(err, "decode integer value").WithCode(mdwerror.CodeInvalidInput)
	}
	return n, nil
}

func stringList(items []string) *structpb.Value {
	values := make([]*structpb.Value, len(items))
	for i, s := range items {
		values[i] = structpb.NewStringValue(s)
	}
	return structpb.NewListValue(&structpb.ListValue{Values: values})
}

func fromStringList(v *structpb.Value) []string {
	values := v.GetListValue().GetValues()
	out := make([]string, len(values))
	for i, item := range values {
		out[i] = item.GetStringValue()
	}
	return out
}
