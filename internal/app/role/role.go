package role

// Role роль пользователя в системе
type Role int

const (
	Buyer   Role = iota // обычный пользователь
	Manager             // менеджер площадки
	Admin               // администратор
)
