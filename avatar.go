package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/goliatone/go-task-auth/imaging"
	"github.com/goliatone/go-task-auth/storage"
)

func avatarKey(id uuid.UUID) string {
	return "avatars/" + id.String() + ".png"
}

// SetAvatar stores data, normalized to a 250x250 PNG, as the user's avatar
func (s *Auther) SetAvatar(ctx context.Context, user *User, filename string, data []byte) (*User, error) {
	if user == nil {
		return nil, ErrIdentityNotFound
	}

	thumb, err := imaging.Thumbnail(filename, data, s.maxUpload)
	if err != nil {
		return nil, err
	}

	key := avatarKey(user.ID)
	if err := s.objects.Put(ctx, key, storage.Object{Data: thumb, ContentType: imaging.ContentType}); err != nil {
		return nil, oops.Code(CodeAvatarStore).With("user_id", user.ID).Wrap(err)
	}

	user.AvatarKey = key
	updated, err := s.repo.Users().Update(ctx, user)
	if err != nil {
		LogError(s.logger, "avatar persist failed", err)
		return nil, err
	}
	return updated, nil
}

// RemoveAvatar deletes the user's avatar if one is set
func (s *Auther) RemoveAvatar(ctx context.Context, user *User) (*User, error) {
	if user == nil {
		return nil, ErrIdentityNotFound
	}
	if user.AvatarKey == "" {
		return user, nil
	}

	if err := s.objects.Delete(ctx, user.AvatarKey); err != nil {
		return nil, oops.Code(CodeAvatarStore).With("user_id", user.ID).Wrap(err)
	}

	user.AvatarKey = ""
	return s.repo.Users().Update(ctx, user)
}

// Avatar returns the stored avatar for the user with id. Unknown users and
// users without an avatar both return ErrNotFound.
func (s *Auther) Avatar(ctx context.Context, id string) (storage.Object, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return storage.Object{}, ErrNotFound
	}

	user, err := s.repo.Users().GetByID(ctx, uid)
	if err != nil {
		return storage.Object{}, err
	}
	if user.AvatarKey == "" {
		return storage.Object{}, ErrNotFound
	}

	obj, err := s.objects.Get(ctx, user.AvatarKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return storage.Object{}, ErrNotFound
		}
		return storage.Object{}, oops.Code(CodeAvatarStore).With("user_id", user.ID).Wrap(err)
	}
	return obj, nil
}
