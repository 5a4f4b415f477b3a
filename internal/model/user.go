package model

import "time"

// User represents an application user record as stored in the `users`
// table.  PasswordHash never leaves the server; handlers render users
// through their own response types.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name.
//  Email        – unique email address, also accepted at login.
//  PasswordHash – bcrypt hashed password.
//  FirstName    – optional profile field.
//  LastName     – optional profile field.
//  IsStaff      – grants access to the admin endpoints.
//  CreatedAt    – timestamp of registration.
type User struct {
    ID           uint64    // users.id
    Username     string    // users.username
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    FirstName    string    // users.first_name
    LastName     string    // users.last_name
    IsStaff      bool      // users.is_staff
    CreatedAt    time.Time // users.created_at
}
