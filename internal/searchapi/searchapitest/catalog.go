package searchapitest

import "github.com/Aman-CERP/scout/internal/searchapi"

// DefaultCatalog returns the startups the fake serves unless replaced.
func DefaultCatalog() []searchapi.Startup {
	return []searchapi.Startup{
		{
			ID: 1, Name: "NeuralMed", Sector: "HealthTech", Location: "Boston, USA",
			FundingStage: "Series A", FundingAmount: "$12M",
			Description: "AI diagnostics for radiology departments",
			Founded:     2019, Employees: "50-100", Website: "https://neuralmed.example",
		},
		{
			ID: 2, Name: "LedgerLoop", Sector: "FinTech", Location: "London, UK",
			FundingStage: "Seed", FundingAmount: "$2M",
			Description: "Real-time reconciliation for small business payments",
			Founded:     2021, Employees: "10-50", Website: "https://ledgerloop.example",
		},
		{
			ID: 3, Name: "GridSpark", Sector: "CleanTech", Location: "Berlin, Germany",
			FundingStage: "Series B", FundingAmount: "$40M",
			Description: "Battery storage orchestration for microgrids",
			Founded:     2017, Employees: "100-250", Website: "https://gridspark.example",
		},
		{
			ID: 4, Name: "Tutorly", Sector: "EdTech", Location: "Bangalore, India",
			FundingStage: "Seed", FundingAmount: "$1.5M",
			Description: "AI tutoring that adapts to each student",
			Founded:     2022, Employees: "10-50", Website: "https://tutorly.example",
		},
		{
			ID: 5, Name: "PayWave", Sector: "FinTech", Location: "San Francisco, USA",
			FundingStage: "Series A", FundingAmount: "$18M",
			Description: "Contactless payments for transit networks",
			Founded:     2018, Employees: "50-100", Website: "https://paywave.example",
		},
		{
			ID: 6, Name: "CropSense", Sector: "AgriTech", Location: "Nairobi, Kenya",
			FundingStage: "Pre-Seed", FundingAmount: "$500K",
			Description: "Satellite crop monitoring for smallholder farms",
			Founded:     2023, Employees: "1-10", Website: "https://cropsense.example",
		},
	}
}
