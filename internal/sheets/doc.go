// Package sheets reads spreadsheet ranges through the Google Sheets v4 API
// using service-account credentials.
//
// The Client implements scheduler.Fetcher. Google API errors are mapped to
// the sentinel errors in this package and every failure is returned as a
// *model.FetchError, so callers can match either with errors.Is/As.
package sheets
