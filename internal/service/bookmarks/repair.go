package bookmarks

import (
	"context"
	"sort"

	"bookmarkd/internal/domain/models"
)

// RepairReport counts the rows whose position was rewritten
type RepairReport struct {
	Folders   int
	Bookmarks int
}

// RepairPositions renumbers every sibling group to 0..n-1, keeping the current
// (position, id) order. It backfills stores written without position bookkeeping.
func (s *Service) RepairPositions(ctx context.Context) (*RepairReport, error) {
	report := &RepairReport{}

	err := s.mutate(ctx, func(ctx context.Context) error {
		folders, err := s.folderRepo.ListAll(ctx)
		if err != nil {
			return err
		}
		folderGroups := map[int64][]models.Folder{}
		for _, f := range folders {
			key := groupKey(f.ParentID)
			folderGroups[key] = append(folderGroups[key], f)
		}
		for _, group := range folderGroups {
			sort.SliceStable(group, func(i, j int) bool {
				return lessPosition(group[i].Position, group[i].ID, group[j].Position, group[j].ID)
			})
			for i, f := range group {
				if f.Position == i {
					continue
				}
				if err := s.folderRepo.SetPosition(ctx, f.ID, i); err != nil {
					return err
				}
				report.Folders++
			}
		}

		bookmarks, err := s.bookmarkRepo.ListAll(ctx)
		if err != nil {
			return err
		}
		bookmarkGroups := map[int64][]models.Bookmark{}
		for _, b := range bookmarks {
			bookmarkGroups[b.FolderID] = append(bookmarkGroups[b.FolderID], b)
		}
		for _, group := range bookmarkGroups {
			sort.SliceStable(group, func(i, j int) bool {
				return lessPosition(group[i].Position, group[i].ID, group[j].Position, group[j].ID)
			})
			for i, b := range group {
				if b.Position == i {
					continue
				}
				if err := s.bookmarkRepo.SetPosition(ctx, b.ID, i); err != nil {
					return err
				}
				report.Bookmarks++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("positions repaired", "folders", report.Folders, "bookmarks", report.Bookmarks)
	return report, nil
}

func lessPosition(posA int, idA int64, posB int, idB int64) bool {
	if posA != posB {
		return posA < posB
	}
	return idA < idB
}
