package handlers

import (
	profileRepo "casaora/database/repository/profile"
)

// HandlerBundle groups the endpoint handlers the router mounts.
type HandlerBundle struct {
	ProfileRepo profileRepo.ProfileRepository
	JWTSecret   string

	Directory    *DirectoryHandler
	Professional *ProfessionalHandler
	Booking      *BookingHandler
	Help         *HelpHandler
	Assistant    *AssistantHandler
	Messaging    *MessagingHandler
	Referral     *ReferralHandler
	Payout       *PayoutHandler
	Admin        *AdminHandler
	Health       *HealthHandler
}
