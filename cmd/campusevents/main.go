//	@title			Campus Events API
//	@version		1.0
//	@description	Campus event management: event publishing, capacity-limited registration and admin moderation.
//	@BasePath		/

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token from POST /auth/login, sent as: Bearer <token>

package main

import (
	"os"
)

func main() {
	if err := RootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
