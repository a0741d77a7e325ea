package testctl

// Indirection layer to allow stubbing in tests

var (
	fnInstallGo      = installGo
	fnInstallGoLlama = installGoLlama

	fnRunGoTests    = runGoTests
	fnRunLlamaTests = runLlamaTests

	fnSmoke = smoke

	fnHasModels = hasModels
)
