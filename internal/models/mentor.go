package models

// Mentor is an entry in the mentor roster shown in the mentors module.
type Mentor struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Title     string `db:"title" json:"title"`
	Specialty string `db:"specialty" json:"specialty"`
	Bio       string `db:"bio" json:"bio"`
	ImageURL  string `db:"image_url" json:"imageUrl"`
	Ordering  int    `db:"ordering" json:"ordering"`
}
