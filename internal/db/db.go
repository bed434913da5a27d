package db

// DB abstracts the database handle passed to repositories, keeping the
// service layer free of a direct gorm dependency. Conn returns the
// underlying driver handle (a *gorm.DB here) for the repository
// implementations to assert on.
type DB interface {
	Conn() any
}
