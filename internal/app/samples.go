package app

import "github.com/aanand-mishra/student-records/internal/types"

// SampleInputs returns the five students a fresh installation starts with.
func SampleInputs() []types.StudentInput {
	return []types.StudentInput{
		{
			ID:             "20241010001",
			Name:           "Budi Santoso",
			BirthDate:      "15/05/2003",
			Email:          "budi.santoso@student.university.ac.id",
			Program:        "Informatika",
			EnrollmentYear: 2024,
			Address:        "Jl. Merdeka No. 123, Jakarta",
		},
		{
			ID:             "20241010002",
			Name:           "Siti Aminah",
			BirthDate:      "22/08/2002",
			Email:          "siti.aminah@student.university.ac.id",
			Program:        "Sistem Informasi",
			EnrollmentYear: 2024,
			Address:        "Jl. Sudirman No. 45, Bandung",
		},
		{
			ID:             "20241010003",
			Name:           "Ahmad Rizki",
			BirthDate:      "10/11/2001",
			Email:          "ahmad.rizki@student.university.ac.id",
			Program:        "Teknik Komputer",
			EnrollmentYear: 2023,
			Address:        "Jl. Gatot Subroto No. 67, Surabaya",
		},
		{
			ID:             "20241010004",
			Name:           "Dewi Lestari",
			BirthDate:      "03/03/2004",
			Email:          "dewi.lestari@student.university.ac.id",
			Program:        "Manajemen",
			EnrollmentYear: 2024,
			Address:        "Jl. Thamrin No. 89, Yogyakarta",
		},
		{
			ID:             "20241010005",
			Name:           "Rudi Hermawan",
			BirthDate:      "18/09/2003",
			Email:          "rudi.hermawan@student.university.ac.id",
			Program:        "Akuntansi",
			EnrollmentYear: 2024,
			Address:        "Jl. Pemuda No. 12, Semarang",
		},
	}
}
