// Package helpers provides test utility functions for the QR menu API.
//
// # Requests
//
//	rr := helpers.NewRequest(t, http.MethodPost, "/api/menus").
//	    WithBody(fixtures.Menu()).
//	    Do(mux)
//
// # Assertions
//
//	helpers.AssertStatus(t, rr, http.StatusCreated)
//	helpers.AssertProblemDetails(t, rr, http.StatusNotFound, model.ErrCodeNotFound)
//	helpers.AssertValidationError(t, rr, "items")
//	helpers.AssertMenuStored(t, tdb.DB, id)
package helpers
