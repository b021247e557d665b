package handlers

// AppHandlers holds every HTTP handler of the application.
type AppHandlers struct {
	AuthHandler        *AuthHandler
	ProfileHandler     *ProfileHandler
	JobHandler         *JobHandler
	ApplicationHandler *ApplicationHandler
	FinanceHandler     *FinanceHandler
	QurbanHandler      *QurbanHandler
	ItikafHandler      *ItikafHandler
	UploadHandler      *UploadHandler
	FileHandler        *FileHandler
	OCRHandler         *OCRHandler
	SearchHandler      *SearchHandler
	HealthHandler      *HealthHandler
}
