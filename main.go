package main

import (
	"log"
	"net/http"
	"time"

	"github.com/jobsphere/job-board/internal/application"
	"github.com/jobsphere/job-board/internal/candidate"
	"github.com/jobsphere/job-board/internal/config"
	"github.com/jobsphere/job-board/internal/database"
	"github.com/jobsphere/job-board/internal/email"
	"github.com/jobsphere/job-board/internal/employer"
	"github.com/jobsphere/job-board/internal/handler"
	"github.com/jobsphere/job-board/internal/job"
	"github.com/jobsphere/job-board/internal/media"
	"github.com/jobsphere/job-board/internal/message"
	"github.com/jobsphere/job-board/internal/placement"
	"github.com/jobsphere/job-board/internal/savedjobs"
	"github.com/jobsphere/job-board/internal/server"
	"github.com/jobsphere/job-board/internal/user"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("unable to load config: %v", err)
	}

	conn, err := database.GetDbConn(
		cfg.DatabaseUser,
		cfg.DatabasePassword,
		cfg.DatabaseHost,
		cfg.DatabasePort,
		cfg.DatabaseName,
		cfg.DatabaseSSLMode,
	)
	if err != nil {
		log.Fatalf("unable to connect to db: %v", err)
	}
	defer database.CloseDbConn(conn)

	if err := database.EnsureSchema(conn); err != nil {
		log.Fatalf("unable to ensure db schema: %v", err)
	}

	emailClient, err := email.NewClient(cfg.EmailAPIKey, cfg.SupportEmail, cfg.NoReplyEmail, cfg.SiteName)
	if err != nil {
		log.Fatalf("unable to initialise email client: %v", err)
	}

	sessionStore := sessions.NewCookieStore(cfg.SessionKey)

	userRepo := user.NewRepository(conn)
	candidateRepo := candidate.NewRepository(conn)
	employerRepo := employer.NewRepository(conn)
	jobRepo := job.NewRepository(conn)
	applicationRepo := application.NewRepository(conn)
	mediaRepo := media.NewRepository(conn)
	messageRepo := message.NewRepository(conn)
	placementRepo := placement.NewRepository(conn)
	savedJobsRepo := savedjobs.NewRepository(conn)

	svr := server.NewServer(
		cfg,
		conn,
		mux.NewRouter(),
		emailClient,
		sessionStore,
	)

	// the configured admin registers like any other user and is promoted here
	if err := userRepo.PromoteToAdmin(cfg.AdminEmail); err != nil {
		svr.Log(err, "unable to promote admin user")
	}

	go periodicMaintenance(svr, jobRepo, userRepo)

	svr.RegisterRoute("/health", handler.HealthHandler(svr), []string{http.MethodGet})

	// auth
	svr.RegisterRoute("/x/auth/register", handler.RegisterHandler(svr, userRepo, candidateRepo, employerRepo, placementRepo), []string{http.MethodPost})
	svr.RegisterRoute("/x/auth/login", handler.LoginHandler(svr, userRepo), []string{http.MethodPost})
	svr.RegisterRoute("/x/auth/logout", handler.LogoutHandler(svr), []string{http.MethodPost})
	svr.RegisterRoute("/x/auth/request-password-reset", handler.RequestPasswordResetHandler(svr, userRepo), []string{http.MethodPost})
	svr.RegisterRoute("/x/auth/reset-password", handler.ConfirmPasswordResetHandler(svr, userRepo), []string{http.MethodPost})

	// jobs
	svr.RegisterRoute("/x/jobs", handler.ListJobsHandler(svr, jobRepo), []string{http.MethodGet})
	svr.RegisterRoute("/x/jobs", handler.PostAJobHandler(svr, jobRepo, employerRepo), []string{http.MethodPost})
	svr.RegisterRoute("/x/jobs/stats", handler.JobStatsHandler(svr, jobRepo), []string{http.MethodGet})
	svr.RegisterRoute("/x/jobs/mine", handler.JobsByEmployerHandler(svr, jobRepo, employerRepo), []string{http.MethodGet})
	svr.RegisterRoute("/x/jobs/pending", handler.PendingApprovalJobsHandler(svr, jobRepo), []string{http.MethodGet})
	svr.RegisterRoute("/x/jobs/{id}", handler.UpdateJobHandler(svr, jobRepo, employerRepo), []string{http.MethodPut})
	svr.RegisterRoute("/x/jobs/{id}/approve", handler.ApproveJobHandler(svr, jobRepo), []string{http.MethodPost})
	svr.RegisterRoute("/x/jobs/{id}/expire", handler.ExpireJobHandler(svr, jobRepo, employerRepo), []string{http.MethodPost})
	svr.RegisterRoute("/job/{slug}", handler.JobBySlugHandler(svr, jobRepo), []string{http.MethodGet})

	// applications
	svr.RegisterRoute("/x/applications", handler.ApplyToJobHandler(svr, applicationRepo, candidateRepo), []string{http.MethodPost})
	svr.RegisterRoute("/x/applications/guest", handler.GuestApplyToJobHandler(svr, applicationRepo), []string{http.MethodPost})
	svr.RegisterRoute("/x/applications/mine", handler.MyApplicationsHandler(svr, applicationRepo, candidateRepo), []string{http.MethodGet})
	svr.RegisterRoute("/x/applications/job/{id}", handler.ApplicationsByJobHandler(svr, applicationRepo), []string{http.MethodGet})
	svr.RegisterRoute("/x/applications/employer/{id}", handler.ApplicationsByEmployerHandler(svr, applicationRepo), []string{http.MethodGet})
	svr.RegisterRoute("/x/applications/{id}", handler.ApplicationByIDHandler(svr, applicationRepo), []string{http.MethodGet})
	svr.RegisterRoute("/x/applications/{id}/status", handler.ChangeApplicationStatusHandler(svr, applicationRepo, candidateRepo), []string{http.MethodPut})
	svr.RegisterRoute("/x/applications/{id}/rounds", handler.RecordInterviewRoundHandler(svr, applicationRepo), []string{http.MethodPut})
	svr.RegisterRoute("/x/applications/{id}/select", handler.SelectForProcessHandler(svr, applicationRepo), []string{http.MethodPut})
	svr.RegisterRoute("/x/applications/{id}/remarks", handler.SetEmployerRemarksHandler(svr, applicationRepo), []string{http.MethodPut})

	// candidate profiles and saved jobs
	svr.RegisterRoute("/x/candidate/profile", handler.GetCandidateProfileHandler(svr, candidateRepo), []string{http.MethodGet})
	svr.RegisterRoute("/x/candidate/profile", handler.UpdateCandidateProfileHandler(svr, candidateRepo), []string{http.MethodPut})
	svr.RegisterRoute("/x/candidate/profile", handler.DeleteCandidateProfileHandler(svr, candidateRepo, userRepo, mediaRepo), []string{http.MethodDelete})
	svr.RegisterRoute("/x/candidate/resume", handler.UpdateCandidateResumeHandler(svr, candidateRepo), []string{http.MethodPut})
	svr.RegisterRoute("/x/candidate/marksheet", handler.UpdateCandidateMarksheetHandler(svr, candidateRepo), []string{http.MethodPut})
	svr.RegisterRoute("/candidate/{slug}", handler.ViewCandidateProfileHandler(svr, candidateRepo), []string{http.MethodGet})
	svr.RegisterRoute("/x/candidate/saved-jobs", handler.SavedJobsForCandidateHandler(svr, candidateRepo, savedJobsRepo), []string{http.MethodGet})
	svr.RegisterRoute("/x/candidate/saved-jobs/{id}", handler.SaveJobForCandidateHandler(svr, candidateRepo, savedJobsRepo), []string{http.MethodPost})
	svr.RegisterRoute("/x/candidate/saved-jobs/{id}", handler.UnsaveJobForCandidateHandler(svr, candidateRepo, savedJobsRepo), []string{http.MethodDelete})

	// employer profiles and verification
	svr.RegisterRoute("/x/employer/profile", handler.GetEmployerProfileHandler(svr, employerRepo), []string{http.MethodGet})
	svr.RegisterRoute("/x/employer/profile", handler.UpdateEmployerProfileHandler(svr, employerRepo), []string{http.MethodPut})
	svr.RegisterRoute("/x/employer/documents", handler.SubmitEmployerDocumentHandler(svr, employerRepo), []string{http.MethodPost})
	svr.RegisterRoute("/x/employer/pending", handler.PendingEmployerVerificationsHandler(svr, employerRepo), []string{http.MethodGet})
	svr.RegisterRoute("/x/employer/{id}/verify", handler.VerifyEmployerHandler(svr, employerRepo), []string{http.MethodPost})
	svr.RegisterRoute("/x/employer/{id}/reject", handler.RejectEmployerHandler(svr, employerRepo), []string{http.MethodPost})
	svr.RegisterRoute("/employer/{slug}", handler.ViewEmployerProfileHandler(svr, employerRepo), []string{http.MethodGet})

	// placement officer profiles
	svr.RegisterRoute("/x/placement/profile", handler.GetPlacementProfileHandler(svr, placementRepo), []string{http.MethodGet})
	svr.RegisterRoute("/x/placement/profile", handler.UpdatePlacementProfileHandler(svr, placementRepo), []string{http.MethodPut})

	// messages
	svr.RegisterRoute("/x/messages", handler.SendMessageHandler(svr, messageRepo), []string{http.MethodPost})
	svr.RegisterRoute("/x/messages/inbox", handler.InboxMessagesHandler(svr, messageRepo), []string{http.MethodGet})
	svr.RegisterRoute("/x/messages/sent", handler.SentMessagesHandler(svr, messageRepo), []string{http.MethodGet})
	svr.RegisterRoute("/x/messages/{id}/delivered", handler.MarkMessageDeliveredHandler(svr, messageRepo), []string{http.MethodPut})

	// media
	svr.RegisterRoute("/x/media", handler.UploadMediaHandler(svr, mediaRepo), []string{http.MethodPost})
	svr.RegisterRoute("/media/{id}", handler.RetrieveMediaHandler(svr, mediaRepo), []string{http.MethodGet})

	log.Fatal(svr.Run())
}

// periodicMaintenance expires outdated jobs and prunes stale password reset
// tokens once a day.
func periodicMaintenance(svr server.Server, jobRepo *job.Repository, userRepo *user.Repository) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for range ticker.C {
		if _, err := jobRepo.MarkJobsExpired(90); err != nil {
			svr.Log(err, "unable to mark jobs expired")
		}
		if err := userRepo.DeleteExpiredPasswordResetTokens(); err != nil {
			svr.Log(err, "unable to delete expired password reset tokens")
		}
	}
}
