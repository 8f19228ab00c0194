package llm

import (
	"time"

	"github.com/ppiankov/bodycomp/internal/model"
)

func floatPtr(v float64) *float64 {
	return &v
}

// sampleReport is a finished JP3 evaluation: 23.70% body fat, BMI 22.92.
func sampleReport() model.Report {
	in := model.MeasurementSet{
		Name: "Maria", Age: 31, Sex: model.SexFemale,
		StatureCm: 165, MassKg: 62.4, WaistCm: 72, HipCm: 98,
		Skinfolds: model.Skinfolds{Triceps: 18, Suprailiac: 14.5, Thigh: 24},
	}
	return model.Report{
		GeneratedAt: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		Protocol:    model.ProtocolJP3,
		Input:       in,
		Result: model.EvaluationResult{
			Name: in.Name, Age: in.Age, Sex: in.Sex,
			Skinfold: &model.SkinfoldResult{
				Protocol: model.ProtocolJP3,
				Name:     model.ProtocolJP3.Title(),
				Sum:      56.5,
				Density:  1.0449876,
				BodyFat:  23.703612,
			},
			Indices: []model.IndexResult{
				{Kind: model.IndexBMI, Name: "Índice de Massa Corporal (IMC)", Value: floatPtr(22.92011), Status: "Peso Normal"},
				{Kind: model.IndexWaistHeight, Name: "Relação Cintura-Estatura (RCE)", Value: floatPtr(0.436363), Status: "Baixo Risco (Saudável)"},
				{Kind: model.IndexWaistHip, Name: "Relação Cintura-Quadril (RCQ)", Value: floatPtr(0.734693), Status: "Baixo Risco", Threshold: 0.85},
			},
		},
		Classification: &model.Classification{Category: "Bom", Band: "30-39"},
	}
}
