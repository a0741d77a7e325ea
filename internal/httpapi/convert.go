package httpapi

import (
	"creditrisk/internal/backend"
	"creditrisk/internal/dispatch"
	"creditrisk/internal/prompt"
	"creditrisk/pkg/types"
)

var noObserver dispatch.Observer

func fromRequest(req types.CreditRiskRequest) prompt.CreditRecord {
	return prompt.CreditRecord{
		Age:               req.Age,
		Occupation:        req.Occupation,
		AnnualIncome:      req.AnnualIncome,
		OutstandingDebt:   req.OutstandingDebt,
		CreditUtilization: req.CreditUtilization,
		PaymentBehavior:   req.PaymentBehavior,
	}
}

// ToModelResponse maps one backend result to its wire form.
func ToModelResponse(r backend.InferenceResult) types.ModelResponse {
	out := types.ModelResponse{
		ModelName:      r.Backend,
		DisplayName:    r.DisplayName,
		FormattedInput: r.Prompt,
		Response:       r.Text,
		ProcessingTime: r.ElapsedSeconds(),
		Status:         string(r.Status),
		Error:          r.ErrorMessage(),
		FinishReason:   r.FinishReason,
	}
	if l, ok := r.Label(); ok {
		out.Label = string(l)
	}
	return out
}

// ToParallelResponse maps a joined dispatch result to its wire form.
func ToParallelResponse(res dispatch.DispatchResult) types.ParallelResponse {
	out := types.ParallelResponse{
		DispatchID:          res.ID,
		Results:             make(map[string]types.ModelResponse, len(res.Results)),
		TotalProcessingTime: res.TotalElapsedSeconds(),
		Succeeded:           res.Succeeded(),
	}
	for name, r := range res.Results {
		out.Results[name] = ToModelResponse(r)
	}
	return out
}
