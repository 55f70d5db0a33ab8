package handlers

import "github.com/oksasatya/user-api/internal/domain/entity"

// userDTO is the JSON shape of a user on the wire.
type userDTO struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func toDTO(u entity.User) userDTO {
	return userDTO{ID: int64(u.ID), FirstName: u.FirstName, Email: u.Email, Password: u.Password}
}

func toDTOs(users []entity.User) []userDTO {
	out := make([]userDTO, 0, len(users))
	for _, u := range users {
		out = append(out, toDTO(u))
	}
	return out
}

func (d userDTO) toEntity() entity.User {
	return entity.User{ID: entity.UserID(d.ID), FirstName: d.FirstName, Email: d.Email, Password: d.Password}
}

type findUsersQuery struct {
	FirstName *string `form:"first-name"`
	Email     *string `form:"email"`
}

func (q findUsersQuery) criteria() entity.UserCriteria {
	return entity.UserCriteria{FirstName: q.FirstName, Email: q.Email}
}
