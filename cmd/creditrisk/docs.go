package main

// General API documentation for swaggo. Regenerate with
// `swag init -g cmd/creditrisk/docs.go -o docs`.
//
// @title           Credit Risk Assessment API
// @version         1.0
// @description     Runs a borrower record through several fine-tuned language models at once and compares their credit-score answers.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
