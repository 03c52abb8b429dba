/*
Package membersdk is a Go client for the colive membership service.

# Overview

Client covers the public surface: health checks, invite validation,
registration and login. Login returns a Session that carries the access token
for the member and administrator endpoints.

	client := membersdk.NewClient("https://colive.example")

	// Check what an invite code resolves to before registering
	res, err := client.ValidateInvite(ctx, membersdk.ValidateInviteRequest{Code: "AB12-C3D-4EF"})

	// Submit an application
	member, err := client.Register(ctx, req)

	// Log in as an administrator and approve it
	session, err := client.Login(ctx, "admin@example.com", password)
	approved, err := session.ApproveApplication(ctx, member.ID, locationID)

# Errors

Failed calls return *APIError. Invite rejections carry the reason
(not_found, disabled, expired or exhausted) and validation failures carry
per-field messages:

	var apiErr *membersdk.APIError
	if errors.As(err, &apiErr) && apiErr.Reason == membersdk.ReasonExhausted {
		// ask the applicant for another code
	}
*/
package membersdk
