package skinfold

import (
	"math"

	"github.com/ppiankov/bodycomp/internal/model"
	"github.com/ppiankov/bodycomp/internal/reference"
)

// JP7HighSumThreshold is the sum above which the 7-site estimate is flagged.
const JP7HighSumThreshold = 300.0

const (
	noteJP7    = "Válido para 18-61 anos (homens) e 18-55 anos (mulheres). É o mais completo e mais referenciado no campo de atletas."
	noteJP3    = "O protocolo de campo mais rápido. Atenção: a combinação de dobras muda entre homens (PE, AB, CX) e mulheres (TR, SI, CX)."
	noteGuedes = "Altamente recomendado para a população brasileira. Não considera a idade diretamente na fórmula, mas é mais preciso para adultos jovens (18-30 anos)."
	noteDurnin = "Altamente dependente da faixa etária para o cálculo da Densidade Corporal. É preciso que a idade esteja entre 17 e 72 anos."

	warnJP7HighSum = "A soma das dobras é muito alta (>300mm), a estimativa JP7 pode ser menos precisa."
)

// JacksonPollock7 uses triceps, subscapular, mid-axillary, pectoral,
// abdominal, suprailiac and thigh.
func JacksonPollock7(in Input) model.SkinfoldResult {
	s := in.Skinfolds
	sum := s.Triceps + s.Subscapular + s.MidAxillary + s.Pectoral + s.Abdominal + s.Suprailiac + s.Thigh
	if sum == 0 {
		return model.SkinfoldFailure(model.ProtocolJP7, model.KindMissingSkinfolds, "O Protocolo J&P 7 dobras exige as 7 medidas.")
	}

	// High sums are flagged but still computed
	var warnings []string
	if sum > JP7HighSumThreshold {
		warnings = append(warnings, warnJP7HighSum)
	}

	age := float64(in.Age)
	var dc float64
	switch in.Sex {
	case model.SexMale:
		// 18-61 years
		dc = 1.112 - (0.00043499 * sum) + (0.00000055 * sum * sum) - (0.00028826 * age)
	case model.SexFemale:
		// 18-55 years
		dc = 1.0970 - (0.00046971 * sum) + (0.00000056 * sum * sum) - (0.00012828 * age)
	default:
		return model.SkinfoldFailure(model.ProtocolJP7, model.KindUnspecifiedSex, "Sexo não especificado para o cálculo JP7.")
	}

	res := success(model.ProtocolJP7, sum, dc,
		describe(s, model.SiteTriceps, model.SiteSubscapular, model.SiteMidAxillary, model.SitePectoral, model.SiteAbdominal, model.SiteSuprailiac, model.SiteThigh),
		noteJP7)
	res.Warnings = warnings
	return res
}

// JacksonPollock3 sums pectoral, abdominal and thigh for men and triceps,
// suprailiac and thigh for women.
func JacksonPollock3(in Input) model.SkinfoldResult {
	s := in.Skinfolds
	age := float64(in.Age)

	switch in.Sex {
	case model.SexMale:
		sum := s.Pectoral + s.Abdominal + s.Thigh
		if sum == 0 {
			return model.SkinfoldFailure(model.ProtocolJP3, model.KindMissingSkinfolds, "O Protocolo JP3 (Homens) exige as dobras Peitoral, Abdominal e Coxa.")
		}
		dc := 1.10938 - (0.0008267 * sum) + (0.0000016 * sum * sum) - (0.0002574 * age)
		return success(model.ProtocolJP3, sum, dc, describe(s, model.SitePectoral, model.SiteAbdominal, model.SiteThigh), noteJP3)

	case model.SexFemale:
		sum := s.Triceps + s.Suprailiac + s.Thigh
		if sum == 0 {
			return model.SkinfoldFailure(model.ProtocolJP3, model.KindMissingSkinfolds, "O Protocolo JP3 (Mulheres) exige as dobras Tríceps, Supra-Ilíaca e Coxa.")
		}
		dc := 1.0994921 - (0.0009929 * sum) + (0.0000023 * sum * sum) - (0.0001392 * age)
		return success(model.ProtocolJP3, sum, dc, describe(s, model.SiteTriceps, model.SiteSuprailiac, model.SiteThigh), noteJP3)

	default:
		return model.SkinfoldFailure(model.ProtocolJP3, model.KindUnspecifiedSex, "Sexo não especificado para o cálculo JP3.")
	}
}

// Guedes (1994) regresses on log10 of a 3-site sum and ignores age.
func Guedes(in Input) model.SkinfoldResult {
	s := in.Skinfolds

	switch in.Sex {
	case model.SexMale:
		sum := s.Triceps + s.Suprailiac + s.Abdominal
		if sum == 0 {
			return model.SkinfoldFailure(model.ProtocolGuedes, model.KindMissingSkinfolds, "O Protocolo Guedes (Homens) exige as dobras Tríceps, Supra-Ilíaca e Abdome.")
		}
		dc := 1.17136 - (0.0632 * math.Log10(sum))
		return success(model.ProtocolGuedes, sum, dc, describe(s, model.SiteTriceps, model.SiteSuprailiac, model.SiteAbdominal), noteGuedes)

	case model.SexFemale:
		sum := s.Subscapular + s.Suprailiac + s.Thigh
		if sum == 0 {
			return model.SkinfoldFailure(model.ProtocolGuedes, model.KindMissingSkinfolds, "O Protocolo Guedes (Mulheres) exige as dobras Subescapular, Supra-Ilíaca e Coxa.")
		}
		dc := 1.17136 - (0.0645 * math.Log10(sum))
		return success(model.ProtocolGuedes, sum, dc, describe(s, model.SiteSubscapular, model.SiteSuprailiac, model.SiteThigh), noteGuedes)

	default:
		return model.SkinfoldFailure(model.ProtocolGuedes, model.KindUnspecifiedSex, "Sexo não especificado para o cálculo Guedes.")
	}
}

// DurninWomersley sums biceps, triceps, subscapular and suprailiac for both
// sexes and picks C and M from the sex/age band table.
func DurninWomersley(table *reference.DurninTable, in Input) model.SkinfoldResult {
	s := in.Skinfolds
	sum := s.Biceps + s.Triceps + s.Subscapular + s.Suprailiac
	if sum == 0 {
		return model.SkinfoldFailure(model.ProtocolDurnin, model.KindMissingSkinfolds, "O Protocolo Durnin & Womersley exige as dobras Bíceps, Tríceps, Subescapular e Supra-Ilíaca.")
	}

	var sexLabel string
	switch in.Sex {
	case model.SexMale:
		sexLabel = "Homens"
	case model.SexFemale:
		sexLabel = "Mulheres"
	default:
		return model.SkinfoldFailure(model.ProtocolDurnin, model.KindUnspecifiedSex, "Sexo não especificado para o cálculo Durnin & Womersley.")
	}

	if table == nil {
		table = reference.DefaultDurninTable()
	}
	band, ok := table.Lookup(in.Sex, in.Age)
	if !ok {
		return model.SkinfoldFailure(model.ProtocolDurnin, model.KindAgeOutOfRange,
			"Idade fora do range válido (17-72 anos) para o protocolo Durnin & Womersley ("+sexLabel+").")
	}

	dc := band.C - (band.M * math.Log10(sum))
	return success(model.ProtocolDurnin, sum, dc,
		describe(s, model.SiteBiceps, model.SiteTriceps, model.SiteSubscapular, model.SiteSuprailiac),
		noteDurnin)
}
