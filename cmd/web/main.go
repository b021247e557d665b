// @title           Portal API
// @version         1.0
// @description     Job board, applicant tracking and mosque administration (qurban, itikaf, finance).
// @contact.name    Portal team
// @contact.email   support@portal.local
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:4000
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import "portal_backend/internal/app"

func main() {
	app.Run()
}
