package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON)
	authMiddleware := standardMiddleware.Append(app.requireAuth)

	mux := pat.New()

	// Verification
	mux.Post("/subscription/verify/google", authMiddleware.ThenFunc(app.verificationHandler.VerifyGooglePurchase))
	mux.Post("/subscription/verify/apple", authMiddleware.ThenFunc(app.verificationHandler.VerifyApplePurchase))
	mux.Get("/subscription/entitlement", authMiddleware.ThenFunc(app.verificationHandler.GetEntitlement))

	// Push
	mux.Post("/notify", authMiddleware.ThenFunc(app.pushHandler.NotifyUser))
	mux.Post("/notify/token", authMiddleware.ThenFunc(app.pushHandler.CreateToken))
	mux.Del("/notify/token/:token", authMiddleware.ThenFunc(app.pushHandler.DeleteToken))

	return standardMiddleware.Then(mux)
}
